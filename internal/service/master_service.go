package service

import (
	"context"
	"fmt"
	"strings"

	"simkas/internal/model"
	"simkas/internal/repository/database"
)

type MasterService struct {
	master *database.MasterRepository
}

func NewMasterService(master *database.MasterRepository) *MasterService {
	return &MasterService{master: master}
}

func (s *MasterService) ListClasses(ctx context.Context) ([]model.Class, error) {
	return s.master.ListClasses(ctx)
}

func (s *MasterService) ListCohorts(ctx context.Context) ([]model.Cohort, error) {
	return s.master.ListCohorts(ctx)
}

func (s *MasterService) CreateCohort(ctx context.Context, actor model.Actor, year int, name string) (*model.Cohort, error) {
	if actor.Role != model.RoleCohortAdmin {
		return nil, ErrForbidden
	}
	name = strings.TrimSpace(name)
	if year < 1900 || name == "" {
		return nil, ErrInvalidParams
	}
	c := &model.Cohort{Year: year, Name: name}
	if err := s.master.CreateCohort(ctx, c); err != nil {
		return nil, fmt.Errorf("create cohort: %w", err)
	}
	return c, nil
}

func (s *MasterService) CreateClass(ctx context.Context, actor model.Actor, code, name string, cohortID uint64) (*model.Class, error) {
	if actor.Role != model.RoleCohortAdmin {
		return nil, ErrForbidden
	}
	code, name = strings.TrimSpace(code), strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, ErrInvalidParams
	}
	if _, err := s.master.FindCohort(ctx, cohortID); err != nil {
		return nil, notFound("find cohort", err)
	}
	exists, err := s.master.ClassCodeExists(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("check class code: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("class code %q: %w", code, ErrInvalidParams)
	}
	c := &model.Class{Code: code, Name: name, CohortID: cohortID}
	if err := s.master.CreateClass(ctx, c); err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}
	return c, nil
}
