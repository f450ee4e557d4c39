package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"simkas/internal/model"
	"simkas/internal/repository/database"

	"github.com/shopspring/decimal"
)

// CampaignView is a campaign with its folded totals.
type CampaignView struct {
	model.Campaign
	Collected    decimal.Decimal `json:"collected"`
	PendingCount int64           `json:"pendingCount"`
}

type CampaignService struct {
	campaigns  *database.CampaignRepository
	expenses   *database.ExpenseRepository
	aggregates *AggregationService
	log        *log.Logger
}

func NewCampaignService(campaigns *database.CampaignRepository, expenses *database.ExpenseRepository, aggregates *AggregationService, logger *log.Logger) *CampaignService {
	if logger == nil {
		logger = log.Default()
	}
	return &CampaignService{campaigns: campaigns, expenses: expenses, aggregates: aggregates, log: logger}
}

type CampaignInput struct {
	Name         string
	Description  string
	TargetAmount decimal.Decimal
}

// Create derives scope and unit from the creator: treasurers open class
// campaigns, cohort admins open cohort campaigns.
func (s *CampaignService) Create(ctx context.Context, actor model.Actor, in CampaignInput) (*model.Campaign, error) {
	c := &model.Campaign{
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		TargetAmount: in.TargetAmount,
		Active:       true,
		OwnerID:      actor.ID,
	}
	switch actor.Role {
	case model.RoleTreasurer:
		if actor.ClassID == nil {
			return nil, ErrAffiliationRequired
		}
		c.Scope, c.ClassID = model.ScopeClass, actor.ClassID
	case model.RoleCohortAdmin:
		if actor.CohortID == nil {
			return nil, ErrAffiliationRequired
		}
		c.Scope, c.CohortID = model.ScopeCohort, actor.CohortID
	default:
		return nil, ErrForbidden
	}
	if c.Name == "" {
		return nil, ErrInvalidParams
	}
	if c.TargetAmount.IsNegative() || !model.FitsMoney(c.TargetAmount) {
		return nil, ErrInvalidAmount
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	s.log.Printf("campaign %d created by user %d scope=%s", c.ID, actor.ID, c.Scope)
	return c, nil
}

// SetActive is reserved to the owner. Deactivation keeps the ledger intact.
func (s *CampaignService) SetActive(ctx context.Context, actor model.Actor, id uint64, active bool) (*model.Campaign, error) {
	c, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("find campaign", err)
	}
	if c.OwnerID != actor.ID {
		return nil, ErrForbidden
	}
	updated, changed, err := s.campaigns.SetActive(ctx, id, active)
	if err != nil {
		return nil, notFound("set campaign active", err)
	}
	if changed {
		s.log.Printf("campaign %d active=%t by user %d", id, active, actor.ID)
	}
	return updated, nil
}

func (s *CampaignService) Get(ctx context.Context, id uint64) (*CampaignView, error) {
	c, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("find campaign", err)
	}
	views, err := s.withTotals(ctx, []model.Campaign{*c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *CampaignService) ListVisible(ctx context.Context, actor model.Actor) ([]CampaignView, error) {
	list, err := s.campaigns.ListVisible(ctx, actor.ClassID, actor.CohortID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return s.withTotals(ctx, list)
}

func (s *CampaignService) ListManaged(ctx context.Context, actor model.Actor) ([]CampaignView, error) {
	list, err := s.campaigns.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list managed campaigns: %w", err)
	}
	return s.withTotals(ctx, list)
}

func (s *CampaignService) withTotals(ctx context.Context, list []model.Campaign) ([]CampaignView, error) {
	ids := make([]uint64, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	tallies, err := s.aggregates.Tallies(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]CampaignView, 0, len(list))
	for _, c := range list {
		t := tallies[c.ID]
		views = append(views, CampaignView{Campaign: c, Collected: t.Valid, PendingCount: t.Pending})
	}
	return views, nil
}

// RecordExpense appends to the campaign's expense ledger. Owner only.
func (s *CampaignService) RecordExpense(ctx context.Context, actor model.Actor, campaignID uint64, amount decimal.Decimal, note string) (*model.Expense, error) {
	c, err := s.campaigns.FindByID(ctx, campaignID)
	if err != nil {
		return nil, notFound("find campaign", err)
	}
	if c.OwnerID != actor.ID {
		return nil, ErrForbidden
	}
	if !amount.IsPositive() || !model.FitsMoney(amount) {
		return nil, ErrInvalidAmount
	}
	e := &model.Expense{
		CampaignID: c.ID,
		Amount:     amount,
		Note:       strings.TrimSpace(note),
		RecordedBy: actor.ID,
	}
	if err := s.expenses.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return e, nil
}

func (s *CampaignService) ListExpenses(ctx context.Context, actor model.Actor, campaignID uint64) ([]model.Expense, error) {
	c, err := s.campaigns.FindByID(ctx, campaignID)
	if err != nil {
		return nil, notFound("find campaign", err)
	}
	if !CanValidate(actor, c) {
		return nil, ErrForbidden
	}
	list, err := s.expenses.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return list, nil
}
