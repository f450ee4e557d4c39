package database_test

import (
	"context"
	"testing"
	"time"

	"simkas/internal/model"
	"simkas/internal/repository/database"
	"simkas/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPending(t *testing.T, repo *database.SubmissionRepository, campaigns *database.CampaignRepository) *model.Submission {
	t.Helper()
	ctx := context.Background()
	c := &model.Campaign{Name: "Kas", Scope: model.ScopeClass, Active: true, OwnerID: 1}
	require.NoError(t, campaigns.Create(ctx, c))
	s := &model.Submission{
		CampaignID:  c.ID,
		SubmitterID: 2,
		Amount:      decimal.NewFromInt(25000),
		Status:      model.StatusPending,
		ProofRef:    "proofs/2/2026/10/a.jpg",
		SubmittedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, s, nil))
	return s
}

func countEvents(t *testing.T, repo *database.OutboxRepository, eventType string) int {
	t.Helper()
	events, err := repo.List(context.Background(), 100)
	require.NoError(t, err)
	n := 0
	for _, ev := range events {
		if ev.EventType == eventType {
			n++
		}
	}
	return n
}

func TestTransitionOnlyFromPending(t *testing.T) {
	db := testutil.NewDB(t)
	subs := &database.SubmissionRepository{DB: db}
	outbox := &database.OutboxRepository{DB: db}
	s := seedPending(t, subs, &database.CampaignRepository{DB: db})
	ctx := context.Background()
	at := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

	updated, changed, err := subs.Transition(ctx, s.ID, model.StatusValid, "", 1, at)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, model.StatusValid, updated.Status)

	// the second decider finds the row already decided
	again, changed, err := subs.Transition(ctx, s.ID, model.StatusRejected, "telat", 1, at)
	require.NoError(t, err)
	require.False(t, changed)
	require.Nil(t, again)

	stored, err := subs.FindByID(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusValid, stored.Status)
	require.Empty(t, stored.AdminNote)
	require.Equal(t, 1, countEvents(t, outbox, model.EventSubmissionApproved))
	require.Equal(t, 0, countEvents(t, outbox, model.EventSubmissionRejected))
}

func TestProofRefUsed(t *testing.T) {
	db := testutil.NewDB(t)
	subs := &database.SubmissionRepository{DB: db}
	s := seedPending(t, subs, &database.CampaignRepository{DB: db})
	ctx := context.Background()

	used, err := subs.ProofRefUsed(ctx, s.ProofRef)
	require.NoError(t, err)
	require.True(t, used)
	used, err = subs.ProofRefUsed(ctx, "proofs/2/2026/10/b.jpg")
	require.NoError(t, err)
	require.False(t, used)

	dup := *s
	dup.ID = 0
	require.ErrorIs(t, subs.Create(ctx, &dup, nil), gorm.ErrDuplicatedKey)
}
