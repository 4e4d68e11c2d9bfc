package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/egov-portal-api/internal/authz"
	"github.com/noah-isme/egov-portal-api/internal/models"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
)

// departmentRepository is the slice of the department repository the service
// uses.
type departmentRepository interface {
	List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
	FindByName(ctx context.Context, name string) (*models.Department, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Deactivate(ctx context.Context, id string) error
}

// DepartmentRequest is the admin payload for creating or updating a
// department.
type DepartmentRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone"`
	Active      *bool   `json:"isActive"`
}

// DepartmentService implements department administration. Reading is open to
// any authenticated user; writes are admin-only and deletes are soft.
type DepartmentService struct {
	departments departmentRepository
	catalog     catalogInvalidator
	validate    *validator.Validate
	logger      *zap.Logger
}

// catalogInvalidator lets department changes drop the cached public catalog,
// which embeds department names.
type catalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// NewDepartmentService creates a DepartmentService.
func NewDepartmentService(departments departmentRepository, catalog catalogInvalidator, logger *zap.Logger) *DepartmentService {
	return &DepartmentService{departments: departments, catalog: catalog, validate: validator.New(), logger: logger}
}

// List returns departments; by default only active ones.
func (s *DepartmentService) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, error) {
	departments, err := s.departments.List(ctx, filter)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return departments, nil
}

// Get returns a department by ID.
func (s *DepartmentService) Get(ctx context.Context, id string) (*models.Department, error) {
	department, err := s.departments.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "department not found")
	}
	return department, nil
}

// Create registers a new department. Names are unique.
func (s *DepartmentService) Create(ctx context.Context, sub authz.Subject, req *DepartmentRequest) (*models.Department, error) {
	if !authz.Can(sub, authz.OpDepartmentManage, authz.Scope{}) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	if _, err := s.departments.FindByName(ctx, req.Name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "department name already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.FromError(err)
	}

	department := &models.Department{
		Name:        req.Name,
		Description: req.Description,
		Email:       req.Email,
		Phone:       req.Phone,
		Active:      true,
	}
	if err := s.departments.Create(ctx, department); err != nil {
		return nil, appErrors.FromError(err)
	}

	s.logger.Sugar().Infow("department created", "department_id", department.ID, "name", department.Name)
	return department, nil
}

// Update edits a department.
func (s *DepartmentService) Update(ctx context.Context, sub authz.Subject, id string, req *DepartmentRequest) (*models.Department, error) {
	if !authz.Can(sub, authz.OpDepartmentManage, authz.Scope{}) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	department, err := s.departments.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "department not found")
	}

	department.Name = req.Name
	department.Description = req.Description
	department.Email = req.Email
	department.Phone = req.Phone
	if req.Active != nil {
		department.Active = *req.Active
	}

	if err := s.departments.Update(ctx, department); err != nil {
		return nil, appErrors.FromError(err)
	}

	s.catalog.Invalidate(ctx)
	return department, nil
}

// Delete soft-deactivates a department. Its services remain bound and
// continue to scope staff access.
func (s *DepartmentService) Delete(ctx context.Context, sub authz.Subject, id string) error {
	if !authz.Can(sub, authz.OpDepartmentManage, authz.Scope{}) {
		return appErrors.ErrForbidden
	}

	if _, err := s.departments.FindByID(ctx, id); err != nil {
		return notFoundOr(err, "department not found")
	}

	if err := s.departments.Deactivate(ctx, id); err != nil {
		return appErrors.FromError(err)
	}

	s.catalog.Invalidate(ctx)
	s.logger.Sugar().Infow("department deactivated", "department_id", id)
	return nil
}
