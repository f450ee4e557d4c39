package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"simkas/internal/model"
	"simkas/internal/repository/blob"
	"simkas/internal/repository/database"
	"simkas/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	db *gorm.DB

	users     *database.UserRepository
	master    *database.MasterRepository
	campaigns *database.CampaignRepository
	subs      *database.SubmissionRepository
	expenses  *database.ExpenseRepository
	outbox    *database.OutboxRepository
	store     blob.Store

	masterSvc     *MasterService
	aggregates    *AggregationService
	campaignSvc   *CampaignService
	submissionSvc *SubmissionService
	validationSvc *ValidationService

	cohort     model.Cohort
	class      model.Class
	otherClass model.Class

	treasurer model.Actor
	admin     model.Actor
	member    model.Actor
	member2   model.Actor

	seq int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	logger := testutil.Logger()
	store, err := blob.NewLocal(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		db:        db,
		users:     &database.UserRepository{DB: db},
		master:    &database.MasterRepository{DB: db},
		campaigns: &database.CampaignRepository{DB: db},
		subs:      &database.SubmissionRepository{DB: db},
		expenses:  &database.ExpenseRepository{DB: db},
		outbox:    &database.OutboxRepository{DB: db},
		store:     store,
	}
	f.masterSvc = NewMasterService(f.master)
	f.aggregates = NewAggregationService(f.subs, f.campaigns, f.expenses, f.master, f.users, func() time.Time { return fixedNow })
	f.campaignSvc = NewCampaignService(f.campaigns, f.expenses, f.aggregates, logger)
	f.submissionSvc = NewSubmissionService(f.subs, f.campaigns, f.users, f.master, store, logger)
	f.submissionSvc.now = func() time.Time { return fixedNow }
	f.validationSvc = NewValidationService(f.subs, f.campaigns, logger)

	ctx := context.Background()
	f.cohort = model.Cohort{Year: 2023, Name: "Angkatan 2023"}
	require.NoError(t, f.master.CreateCohort(ctx, &f.cohort))
	f.class = model.Class{Code: "TI-A", Name: "TI A", CohortID: f.cohort.ID}
	require.NoError(t, f.master.CreateClass(ctx, &f.class))
	f.otherClass = model.Class{Code: "TI-B", Name: "TI B", CohortID: f.cohort.ID}
	require.NoError(t, f.master.CreateClass(ctx, &f.otherClass))

	f.treasurer = f.mkUser(t, model.RoleTreasurer, &f.class.ID)
	f.admin = f.mkUser(t, model.RoleCohortAdmin, nil)
	f.member = f.mkUser(t, model.RoleMember, &f.class.ID)
	f.member2 = f.mkUser(t, model.RoleMember, &f.class.ID)
	return f
}

// mkUser inserts a user directly; bcrypt is covered by the account tests.
func (f *fixture) mkUser(t *testing.T, role model.Role, classID *uint64) model.Actor {
	t.Helper()
	f.seq++
	u := &model.User{
		NIM:      fmt.Sprintf("2301%04d", f.seq),
		Name:     fmt.Sprintf("User %d", f.seq),
		Email:    fmt.Sprintf("user%d@kampus.ac.id", f.seq),
		Password: "-",
		Role:     role,
		ClassID:  classID,
		CohortID: &f.cohort.ID,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u.Actor()
}

func (f *fixture) classCampaign(t *testing.T, name string) *model.Campaign {
	t.Helper()
	c, err := f.campaignSvc.Create(context.Background(), f.treasurer, CampaignInput{
		Name:         name,
		TargetAmount: decimal.RequireFromString("500000"),
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) cohortCampaign(t *testing.T, name string) *model.Campaign {
	t.Helper()
	c, err := f.campaignSvc.Create(context.Background(), f.admin, CampaignInput{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) submit(t *testing.T, actor model.Actor, campaignID uint64, amount string) *model.Submission {
	t.Helper()
	s, err := f.submissionSvc.Submit(context.Background(), actor, SubmitInput{
		CampaignID: campaignID,
		Amount:     decimal.RequireFromString(amount),
		Note:       "transfer",
		ProofRef:   f.proof(t, actor),
	})
	require.NoError(t, err)
	return s
}

// proof puts a placeholder object under the actor's upload prefix.
func (f *fixture) proof(t *testing.T, actor model.Actor) string {
	t.Helper()
	f.seq++
	key := fmt.Sprintf("%s2026/10/fixture-%d.jpg", proofPrefix(actor.ID), f.seq)
	require.NoError(t, f.store.Put(context.Background(), key, "image/jpeg", strings.NewReader("jpeg")))
	return key
}

func (f *fixture) countSubmissions(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Submission{}).Count(&n).Error)
	return n
}

func (f *fixture) pendingEvents(t *testing.T, eventType string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.OutboxEvent{}).
		Where("event_type = ? AND status = ?", eventType, model.OutboxPending).
		Count(&n).Error)
	return n
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
