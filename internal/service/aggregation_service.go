package service

import (
	"context"
	"fmt"
	"time"

	"simkas/internal/model"
	"simkas/internal/repository/database"

	"github.com/shopspring/decimal"
)

// Tally is the per-campaign result of folding ledger rows.
type Tally struct {
	Valid      decimal.Decimal
	ValidCount int64
	Pending    int64
	Rejected   int64
}

// Fold groups rows by campaign. Only VALID rows contribute to Valid.
func Fold(rows []model.Submission) map[uint64]Tally {
	out := make(map[uint64]Tally)
	for _, r := range rows {
		t := out[r.CampaignID]
		switch r.Status {
		case model.StatusValid:
			t.Valid = t.Valid.Add(r.Amount)
			t.ValidCount++
		case model.StatusPending:
			t.Pending++
		case model.StatusRejected:
			t.Rejected++
		}
		out[r.CampaignID] = t
	}
	return out
}

func SumExpenses(rows []model.Expense) map[uint64]decimal.Decimal {
	out := make(map[uint64]decimal.Decimal)
	for _, r := range rows {
		out[r.CampaignID] = out[r.CampaignID].Add(r.Amount)
	}
	return out
}

type ClassDashboard struct {
	ClassID         uint64          `json:"classId"`
	ClassName       string          `json:"className"`
	Income          decimal.Decimal `json:"income"`
	Expense         decimal.Decimal `json:"expense"`
	Balance         decimal.Decimal `json:"balance"`
	PendingCount    int64           `json:"pendingCount"`
	UnpaidThisMonth int             `json:"unpaidMembersThisMonth"`
	CampaignCount   int             `json:"campaignCount"`
}

type CohortDashboard struct {
	CohortID      uint64          `json:"cohortId"`
	CohortName    string          `json:"cohortName"`
	Income        decimal.Decimal `json:"income"`
	Expense       decimal.Decimal `json:"expense"`
	Balance       decimal.Decimal `json:"balance"`
	PendingCount  int64           `json:"pendingCount"`
	ClassCount    int             `json:"classCount"`
	CampaignCount int             `json:"campaignCount"`
}

// AggregationService recomputes every figure from the ledger on each call.
type AggregationService struct {
	subs      *database.SubmissionRepository
	campaigns *database.CampaignRepository
	expenses  *database.ExpenseRepository
	master    *database.MasterRepository
	users     *database.UserRepository
	now       func() time.Time
}

func NewAggregationService(
	subs *database.SubmissionRepository,
	campaigns *database.CampaignRepository,
	expenses *database.ExpenseRepository,
	master *database.MasterRepository,
	users *database.UserRepository,
	now func() time.Time,
) *AggregationService {
	if now == nil {
		now = time.Now
	}
	return &AggregationService{subs: subs, campaigns: campaigns, expenses: expenses, master: master, users: users, now: now}
}

func (s *AggregationService) TotalValid(ctx context.Context, campaignID uint64) (decimal.Decimal, error) {
	if _, err := s.campaigns.FindByID(ctx, campaignID); err != nil {
		return decimal.Zero, notFound("find campaign", err)
	}
	tallies, err := s.Tallies(ctx, []uint64{campaignID})
	if err != nil {
		return decimal.Zero, err
	}
	return tallies[campaignID].Valid, nil
}

func (s *AggregationService) PendingCount(ctx context.Context, campaignID uint64) (int64, error) {
	if _, err := s.campaigns.FindByID(ctx, campaignID); err != nil {
		return 0, notFound("find campaign", err)
	}
	n, err := s.subs.CountByStatus(ctx, campaignID, model.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return n, nil
}

func (s *AggregationService) Tallies(ctx context.Context, campaignIDs []uint64) (map[uint64]Tally, error) {
	rows, err := s.subs.FoldRows(ctx, campaignIDs)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return Fold(rows), nil
}

type unitTotals struct {
	income, expense decimal.Decimal
	pending         int64
	rows            []model.Submission
}

func (s *AggregationService) totals(ctx context.Context, campaigns []model.Campaign) (*unitTotals, error) {
	ids := make([]uint64, 0, len(campaigns))
	for _, c := range campaigns {
		ids = append(ids, c.ID)
	}
	rows, err := s.subs.FoldRows(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	exp, err := s.expenses.ListByCampaigns(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	out := &unitTotals{rows: rows}
	for _, t := range Fold(rows) {
		out.income = out.income.Add(t.Valid)
		out.pending += t.Pending
	}
	for _, amt := range SumExpenses(exp) {
		out.expense = out.expense.Add(amt)
	}
	return out, nil
}

// ClassDashboard summarises the CLASS campaigns of the actor's class.
func (s *AggregationService) ClassDashboard(ctx context.Context, actor model.Actor) (*ClassDashboard, error) {
	if actor.ClassID == nil {
		return nil, ErrAffiliationRequired
	}
	class, err := s.master.FindClass(ctx, *actor.ClassID)
	if err != nil {
		return nil, notFound("find class", err)
	}
	campaigns, err := s.campaigns.ListForUnits(ctx, []uint64{class.ID}, nil)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	t, err := s.totals(ctx, campaigns)
	if err != nil {
		return nil, err
	}
	members, err := s.users.MemberIDsByClass(ctx, class.ID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	now := s.now()
	paid := make(map[uint64]bool)
	for _, r := range t.rows {
		at := r.SubmittedAt.In(now.Location())
		if r.Status == model.StatusValid && at.Year() == now.Year() && at.Month() == now.Month() {
			paid[r.SubmitterID] = true
		}
	}
	unpaid := 0
	for _, id := range members {
		if !paid[id] {
			unpaid++
		}
	}

	return &ClassDashboard{
		ClassID:         class.ID,
		ClassName:       class.Name,
		Income:          t.income,
		Expense:         t.expense,
		Balance:         t.income.Sub(t.expense),
		PendingCount:    t.pending,
		UnpaidThisMonth: unpaid,
		CampaignCount:   len(campaigns),
	}, nil
}

// CohortDashboard covers COHORT campaigns of the cohort and CLASS campaigns of its classes.
func (s *AggregationService) CohortDashboard(ctx context.Context, actor model.Actor) (*CohortDashboard, error) {
	if actor.CohortID == nil {
		return nil, ErrAffiliationRequired
	}
	cohort, err := s.master.FindCohort(ctx, *actor.CohortID)
	if err != nil {
		return nil, notFound("find cohort", err)
	}
	classes, err := s.master.ListClassesByCohort(ctx, cohort.ID)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	classIDs := make([]uint64, 0, len(classes))
	for _, c := range classes {
		classIDs = append(classIDs, c.ID)
	}
	campaigns, err := s.campaigns.ListForUnits(ctx, classIDs, &cohort.ID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	t, err := s.totals(ctx, campaigns)
	if err != nil {
		return nil, err
	}
	return &CohortDashboard{
		CohortID:      cohort.ID,
		CohortName:    cohort.Name,
		Income:        t.income,
		Expense:       t.expense,
		Balance:       t.income.Sub(t.expense),
		PendingCount:  t.pending,
		ClassCount:    len(classes),
		CampaignCount: len(campaigns),
	}, nil
}
