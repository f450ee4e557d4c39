package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMasterCreateRequiresCohortAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.masterSvc.CreateCohort(ctx, f.treasurer, 2024, "Angkatan 2024")
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.masterSvc.CreateClass(ctx, f.member, "TI-C", "TI C", f.cohort.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestMasterCreateAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cohort, err := f.masterSvc.CreateCohort(ctx, f.admin, 2024, " Angkatan 2024 ")
	require.NoError(t, err)
	require.Equal(t, "Angkatan 2024", cohort.Name)

	cohorts, err := f.masterSvc.ListCohorts(ctx)
	require.NoError(t, err)
	require.Len(t, cohorts, 2)
	require.Equal(t, 2024, cohorts[0].Year)

	class, err := f.masterSvc.CreateClass(ctx, f.admin, "SI-A", "SI A", cohort.ID)
	require.NoError(t, err)
	require.Equal(t, cohort.ID, class.CohortID)

	classes, err := f.masterSvc.ListClasses(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 3)
	require.Equal(t, "SI-A", classes[0].Code)
}

func TestMasterCreateClassValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.masterSvc.CreateCohort(ctx, f.admin, 1800, "Lama")
	require.ErrorIs(t, err, ErrInvalidParams)

	_, err = f.masterSvc.CreateClass(ctx, f.admin, "", "Tanpa kode", f.cohort.ID)
	require.ErrorIs(t, err, ErrInvalidParams)

	_, err = f.masterSvc.CreateClass(ctx, f.admin, "TI-A", "Duplikat", f.cohort.ID)
	require.ErrorIs(t, err, ErrInvalidParams)

	_, err = f.masterSvc.CreateClass(ctx, f.admin, "TI-Z", "TI Z", 9999)
	require.ErrorIs(t, err, ErrNotFound)
}
