package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/egov-portal-api/internal/authz"
	"github.com/noah-isme/egov-portal-api/internal/models"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
)

const catalogCachePrefix = "catalog:"

// serviceRepository is the slice of the service repository the catalog uses.
type serviceRepository interface {
	List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error)
	FindByID(ctx context.Context, id string) (*models.Service, error)
	Create(ctx context.Context, service *models.Service) error
	Update(ctx context.Context, service *models.Service) error
	Deactivate(ctx context.Context, id string) error
}

// catalogCache is the slice of the cache repository the catalog uses.
type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ServiceRequestPayload is the admin payload for catalog entries.
type ServiceRequestPayload struct {
	Name              string  `json:"name" validate:"required"`
	Description       *string `json:"description"`
	DepartmentID      string  `json:"departmentId" validate:"required"`
	Fee               float64 `json:"fee" validate:"gte=0"`
	ProcessingTime    *string `json:"processingTime"`
	RequiredDocuments *string `json:"requiredDocuments"`
	Active            *bool   `json:"isActive"`
}

// CatalogService serves the public service catalog with Redis caching and
// handles admin catalog management.
type CatalogService struct {
	services    serviceRepository
	departments departmentRepository
	cache       catalogCache
	ttl         time.Duration
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(services serviceRepository, departments departmentRepository, cache catalogCache, ttl time.Duration, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		services:    services,
		departments: departments,
		cache:       cache,
		ttl:         ttl,
		validate:    validator.New(),
		logger:      logger,
	}
}

// List returns catalog services, serving from cache when possible.
func (s *CatalogService) List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error) {
	key := cacheKeyForFilter(filter)

	var cached []models.Service
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Sugar().Warnw("catalog cache read failed", "key", key, "error", err)
	}

	services, err := s.services.List(ctx, filter)
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	if err := s.cache.Set(ctx, key, services, s.ttl); err != nil {
		s.logger.Sugar().Warnw("catalog cache write failed", "key", key, "error", err)
	}
	return services, nil
}

// Get returns a single catalog service.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	service, err := s.services.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "service not found")
	}
	return service, nil
}

// Create adds a catalog entry bound to an existing department.
func (s *CatalogService) Create(ctx context.Context, sub authz.Subject, req *ServiceRequestPayload) (*models.Service, error) {
	if !authz.Can(sub, authz.OpServiceManage, authz.Scope{}) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	if _, err := s.departments.FindByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "department does not exist")
		}
		return nil, appErrors.FromError(err)
	}

	service := &models.Service{
		Name:              req.Name,
		Description:       req.Description,
		DepartmentID:      req.DepartmentID,
		Fee:               req.Fee,
		ProcessingTime:    req.ProcessingTime,
		RequiredDocuments: req.RequiredDocuments,
		Active:            true,
	}
	if err := s.services.Create(ctx, service); err != nil {
		return nil, appErrors.FromError(err)
	}

	s.Invalidate(ctx)
	s.logger.Sugar().Infow("catalog service created", "service_id", service.ID, "department_id", service.DepartmentID)
	return service, nil
}

// Update edits a catalog entry.
func (s *CatalogService) Update(ctx context.Context, sub authz.Subject, id string, req *ServiceRequestPayload) (*models.Service, error) {
	if !authz.Can(sub, authz.OpServiceManage, authz.Scope{}) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	service, err := s.services.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "service not found")
	}

	if req.DepartmentID != service.DepartmentID {
		if _, err := s.departments.FindByID(ctx, req.DepartmentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "department does not exist")
			}
			return nil, appErrors.FromError(err)
		}
	}

	service.Name = req.Name
	service.Description = req.Description
	service.DepartmentID = req.DepartmentID
	service.Fee = req.Fee
	service.ProcessingTime = req.ProcessingTime
	service.RequiredDocuments = req.RequiredDocuments
	if req.Active != nil {
		service.Active = *req.Active
	}

	if err := s.services.Update(ctx, service); err != nil {
		return nil, appErrors.FromError(err)
	}

	s.Invalidate(ctx)
	return service, nil
}

// Delete soft-deactivates a catalog entry. Existing requests keep their
// binding.
func (s *CatalogService) Delete(ctx context.Context, sub authz.Subject, id string) error {
	if !authz.Can(sub, authz.OpServiceManage, authz.Scope{}) {
		return appErrors.ErrForbidden
	}

	if _, err := s.services.FindByID(ctx, id); err != nil {
		return notFoundOr(err, "service not found")
	}

	if err := s.services.Deactivate(ctx, id); err != nil {
		return appErrors.FromError(err)
	}

	s.Invalidate(ctx)
	s.logger.Sugar().Infow("catalog service deactivated", "service_id", id)
	return nil
}

// Invalidate drops every cached catalog listing.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if err := s.cache.DeleteByPattern(ctx, catalogCachePrefix+"*"); err != nil {
		s.logger.Sugar().Warnw("catalog cache invalidation failed", "error", err)
	}
}

func cacheKeyForFilter(filter models.ServiceFilter) string {
	dep := "all"
	if filter.DepartmentID != nil {
		dep = *filter.DepartmentID
	}
	active := "all"
	if filter.Active != nil {
		active = fmt.Sprintf("%t", *filter.Active)
	}
	return fmt.Sprintf("%sservices:%s:%s", catalogCachePrefix, dep, active)
}
