package service

import (
	"context"
	"testing"

	"simkas/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// A campaign that starts inactive is paid into once it is switched on.
func TestInactiveThenActivatedCampaignLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.classCampaign(t, "Kas Oktober")
	_, err := f.campaignSvc.SetActive(ctx, f.treasurer, x.ID, false)
	require.NoError(t, err)

	in := SubmitInput{CampaignID: x.ID, Amount: decimal.NewFromInt(10000), ProofRef: f.proof(t, f.member)}
	_, err = f.submissionSvc.Submit(ctx, f.member, in)
	require.ErrorIs(t, err, ErrCampaignInactive)

	_, err = f.campaignSvc.SetActive(ctx, f.treasurer, x.ID, true)
	require.NoError(t, err)

	sub, err := f.submissionSvc.Submit(ctx, f.member, in)
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, sub.Status)

	approved, err := f.validationSvc.Approve(ctx, f.treasurer, sub.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusValid, approved.Status)

	total, err := f.aggregates.TotalValid(ctx, x.ID)
	require.NoError(t, err)
	requireAmount(t, "10000", total)

	_, err = f.validationSvc.Approve(ctx, f.treasurer, sub.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}
