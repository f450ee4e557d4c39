package service

import (
	"context"
	"testing"
	"time"

	"simkas/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	d := decimal.RequireFromString
	rows := []model.Submission{
		{CampaignID: 1, Status: model.StatusValid, Amount: d("10000")},
		{CampaignID: 1, Status: model.StatusValid, Amount: d("2500.25")},
		{CampaignID: 1, Status: model.StatusPending, Amount: d("99999")},
		{CampaignID: 1, Status: model.StatusRejected, Amount: d("5000")},
		{CampaignID: 2, Status: model.StatusPending, Amount: d("1")},
	}
	got := Fold(rows)

	requireAmount(t, "12500.25", got[1].Valid)
	require.Equal(t, int64(2), got[1].ValidCount)
	require.Equal(t, int64(1), got[1].Pending)
	require.Equal(t, int64(1), got[1].Rejected)
	require.True(t, got[2].Valid.IsZero())
	require.Equal(t, int64(1), got[2].Pending)
	require.True(t, Fold(nil)[7].Valid.IsZero())
}

func TestTotalValidIsRecomputed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.classCampaign(t, "Kas Oktober")

	total, err := f.aggregates.TotalValid(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, total.IsZero())

	a := f.submit(t, f.member, c.ID, "20000")
	b := f.submit(t, f.member2, c.ID, "5000.50")
	r := f.submit(t, f.member2, c.ID, "700")

	total, err = f.aggregates.TotalValid(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, total.IsZero())
	pending, err := f.aggregates.PendingCount(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), pending)

	_, err = f.validationSvc.Approve(ctx, f.treasurer, a.ID)
	require.NoError(t, err)
	total, err = f.aggregates.TotalValid(ctx, c.ID)
	require.NoError(t, err)
	requireAmount(t, "20000", total)

	_, err = f.validationSvc.Approve(ctx, f.treasurer, b.ID)
	require.NoError(t, err)
	_, err = f.validationSvc.Reject(ctx, f.treasurer, r.ID, "wrong amount")
	require.NoError(t, err)

	total, err = f.aggregates.TotalValid(ctx, c.ID)
	require.NoError(t, err)
	requireAmount(t, "25000.50", total)
	pending, err = f.aggregates.PendingCount(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), pending)

	_, err = f.aggregates.TotalValid(ctx, 31337)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.aggregates.PendingCount(ctx, 31337)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClassDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kas := f.classCampaign(t, "Kas Oktober")
	f.cohortCampaign(t, "Dies Natalis")
	member3 := f.mkUser(t, model.RoleMember, &f.class.ID)

	paid := f.submit(t, f.member, kas.ID, "30000")
	f.submit(t, f.member2, kas.ID, "30000")
	_, err := f.validationSvc.Approve(ctx, f.treasurer, paid.ID)
	require.NoError(t, err)
	_, err = f.campaignSvc.RecordExpense(ctx, f.treasurer, kas.ID, decimal.NewFromInt(12500), "spidol")
	require.NoError(t, err)

	// last month's valid payment does not count for this month
	f.submissionSvc.now = func() time.Time { return fixedNow.AddDate(0, -1, 0) }
	old := f.submit(t, member3, kas.ID, "30000")
	_, err = f.validationSvc.Approve(ctx, f.treasurer, old.ID)
	require.NoError(t, err)

	dash, err := f.aggregates.ClassDashboard(ctx, f.member)
	require.NoError(t, err)
	require.Equal(t, "TI A", dash.ClassName)
	requireAmount(t, "60000", dash.Income)
	requireAmount(t, "12500", dash.Expense)
	requireAmount(t, "47500", dash.Balance)
	require.True(t, dash.Balance.Equal(dash.Income.Sub(dash.Expense)))
	require.Equal(t, int64(1), dash.PendingCount)
	require.Equal(t, 2, dash.UnpaidThisMonth)
	require.Equal(t, 1, dash.CampaignCount)

	_, err = f.aggregates.ClassDashboard(ctx, f.admin)
	require.ErrorIs(t, err, ErrAffiliationRequired)
}

func TestCohortDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kas := f.classCampaign(t, "Kas Oktober")
	dies := f.cohortCampaign(t, "Dies Natalis")

	a := f.submit(t, f.member, kas.ID, "10000")
	b := f.submit(t, f.member2, dies.ID, "50000")
	f.submit(t, f.member2, kas.ID, "10000")
	_, err := f.validationSvc.Approve(ctx, f.treasurer, a.ID)
	require.NoError(t, err)
	_, err = f.validationSvc.Approve(ctx, f.admin, b.ID)
	require.NoError(t, err)
	_, err = f.campaignSvc.RecordExpense(ctx, f.admin, dies.ID, decimal.NewFromInt(20000), "sewa aula")
	require.NoError(t, err)

	dash, err := f.aggregates.CohortDashboard(ctx, f.admin)
	require.NoError(t, err)
	require.Equal(t, "Angkatan 2023", dash.CohortName)
	requireAmount(t, "60000", dash.Income)
	requireAmount(t, "20000", dash.Expense)
	requireAmount(t, "40000", dash.Balance)
	require.Equal(t, int64(1), dash.PendingCount)
	require.Equal(t, 2, dash.ClassCount)
	require.Equal(t, 2, dash.CampaignCount)

	_, err = f.aggregates.CohortDashboard(ctx, model.Actor{ID: 99, Role: model.RoleMember})
	require.ErrorIs(t, err, ErrAffiliationRequired)
}
