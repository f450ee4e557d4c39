package service

import (
	"context"
	"sync"
	"testing"

	"simkas/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestApproveMovesPendingToValid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.classCampaign(t, "Kas Oktober")
	sub := f.submit(t, f.member, c.ID, "25000")

	got, err := f.validationSvc.Approve(ctx, f.treasurer, sub.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusValid, got.Status)
	require.Empty(t, got.AdminNote)
	require.NotNil(t, got.DecidedAt)
	require.Equal(t, f.treasurer.ID, *got.DecidedBy)
	require.Equal(t, int64(1), f.pendingEvents(t, model.EventSubmissionApproved))

	_, err = f.validationSvc.Approve(ctx, f.treasurer, sub.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.validationSvc.Reject(ctx, f.treasurer, sub.ID, "late")
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, int64(1), f.pendingEvents(t, model.EventSubmissionApproved))
	require.Equal(t, int64(0), f.pendingEvents(t, model.EventSubmissionRejected))
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.classCampaign(t, "Kas Oktober")
	sub := f.submit(t, f.member, c.ID, "25000")

	for _, reason := range []string{"", "   ", "\n\t"} {
		_, err := f.validationSvc.Reject(ctx, f.treasurer, sub.ID, reason)
		require.ErrorIs(t, err, ErrMissingReason)
	}
	stored, err := f.subs.FindByID(ctx, sub.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, stored.Status)

	got, err := f.validationSvc.Reject(ctx, f.treasurer, sub.ID, "  blurry transfer slip ")
	require.NoError(t, err)
	require.Equal(t, model.StatusRejected, got.Status)
	require.Equal(t, "blurry transfer slip", got.AdminNote)

	_, err = f.validationSvc.Approve(ctx, f.treasurer, sub.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMissingReasonIsCheckedFirst(t *testing.T) {
	f := newFixture(t)
	_, err := f.validationSvc.Reject(context.Background(), f.member, 9999, "")
	require.ErrorIs(t, err, ErrMissingReason)
}

func TestValidationAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.classCampaign(t, "Kas Oktober")
	sub := f.submit(t, f.member, c.ID, "25000")

	otherTreasurer := f.mkUser(t, model.RoleTreasurer, &f.otherClass.ID)
	for _, actor := range []model.Actor{f.member2, otherTreasurer, f.admin} {
		_, err := f.validationSvc.Approve(ctx, actor, sub.ID)
		require.ErrorIs(t, err, ErrForbidden)
		_, err = f.validationSvc.Reject(ctx, actor, sub.ID, "no")
		require.ErrorIs(t, err, ErrForbidden)
	}

	_, err := f.validationSvc.Approve(ctx, f.treasurer, 424242)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentApproveExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.classCampaign(t, "Kas Oktober")
	sub := f.submit(t, f.member, c.ID, "25000")

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.validationSvc.Approve(ctx, f.treasurer, sub.ID)
		}(i)
	}
	close(start)
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, ErrInvalidTransition)
	}
	require.Equal(t, 1, ok)

	stored, err := f.subs.FindByID(ctx, sub.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusValid, stored.Status)
	require.Equal(t, int64(1), f.pendingEvents(t, model.EventSubmissionApproved))
}

// Another validator decides between our read and our conditional update.
func TestApproveAfterStaleReadLoses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.classCampaign(t, "Kas Oktober")
	sub := f.submit(t, f.member, c.ID, "25000")

	var once sync.Once
	require.NoError(t, f.db.Callback().Query().After("gorm:query").Register("test:decided_elsewhere", func(tx *gorm.DB) {
		if tx.Statement.Table != "submissions" {
			return
		}
		once.Do(func() {
			require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).
				Exec("UPDATE submissions SET status = ?, admin_note = ? WHERE id = ?", model.StatusRejected, "bukti ganda", sub.ID).Error)
		})
	}))

	_, err := f.validationSvc.Approve(ctx, f.treasurer, sub.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := f.subs.FindByID(ctx, sub.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusRejected, stored.Status)
	require.Equal(t, "bukti ganda", stored.AdminNote)
	require.Equal(t, int64(0), f.pendingEvents(t, model.EventSubmissionApproved))

	total, err := f.aggregates.TotalValid(ctx, c.ID)
	require.NoError(t, err)
	requireAmount(t, "0", total)
}

func TestCohortAdminValidatesCohortCampaign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.cohortCampaign(t, "Dies Natalis")

	// the class treasurer pays into cohort campaigns like any member
	sub := f.submit(t, f.treasurer, c.ID, "100000")

	_, err := f.validationSvc.Approve(ctx, f.treasurer, sub.ID)
	require.ErrorIs(t, err, ErrForbidden)

	got, err := f.validationSvc.Approve(ctx, f.admin, sub.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusValid, got.Status)
}
