package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/department"
)

type DepartmentService struct {
	base
}

func NewDepartmentService(d Deps) *DepartmentService {
	return &DepartmentService{base: newBase(d)}
}

func (s *DepartmentService) Create(ctx context.Context, p *access.Principal, cmd *department.CreateDepartmentCommand) (*department.Department, error) {
	if err := access.Authorize(p, access.OpCreateDepartment); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, department.ErrNameRequired
	}

	d := &department.Department{
		CreatedAt:   s.now(),
		Name:        name,
		Description: strings.TrimSpace(cmd.Description),
		IsActive:    true,
	}
	if err := s.store.Departments().Create(ctx, d); err != nil {
		return nil, fmt.Errorf("creating department: %w", err)
	}

	s.record(ctx, p, domain.ActionCreate, "department", d.ID, map[string]any{"name": d.Name})
	return d, nil
}

func (s *DepartmentService) Update(ctx context.Context, p *access.Principal, id int64, patch *department.Patch) (*department.Department, error) {
	if err := access.Authorize(p, access.OpUpdateDepartment); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, department.ErrNameRequired
		}
		patch.Name = &name
	}

	d, err := s.store.Departments().Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.record(ctx, p, domain.ActionUpdate, "department", d.ID, nil)
	return d, nil
}

func (s *DepartmentService) Get(ctx context.Context, id int64) (*department.Department, error) {
	return s.store.Departments().GetByID(ctx, id)
}

// List is public.
func (s *DepartmentService) List(ctx context.Context) ([]*department.Department, error) {
	return s.store.Departments().List(ctx)
}
