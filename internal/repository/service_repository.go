package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/egov-portal-api/internal/models"
)

const serviceColumns = `s.id, s.name, s.description, s.department_id, s.fee, s.processing_time, s.required_documents, s.is_active, s.created_at, s.updated_at`

type serviceRow struct {
	models.Service
	DepartmentName   *string `db:"department_name"`
	DepartmentActive *bool   `db:"department_active"`
}

// ServiceRepository provides database access for the service catalog.
type ServiceRepository struct {
	db *sqlx.DB
}

// NewServiceRepository creates a new instance of ServiceRepository.
func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// List returns catalog services with their owning department joined in.
func (r *ServiceRepository) List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error) {
	query := fmt.Sprintf(`SELECT %s, d.name AS department_name, d.is_active AS department_active
		FROM services s
		LEFT JOIN departments d ON d.id = s.department_id
		WHERE 1=1`, serviceColumns)
	var args []interface{}

	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		query += fmt.Sprintf(" AND s.department_id = $%d", len(args))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		query += fmt.Sprintf(" AND s.is_active = $%d", len(args))
	}
	query += " ORDER BY s.name ASC"

	var rows []serviceRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	services := make([]models.Service, 0, len(rows))
	for _, row := range rows {
		svc := row.Service
		if row.DepartmentName != nil {
			svc.Department = &models.Department{
				ID:     svc.DepartmentID,
				Name:   *row.DepartmentName,
				Active: row.DepartmentActive != nil && *row.DepartmentActive,
			}
		}
		services = append(services, svc)
	}
	return services, nil
}

// FindByID returns a service with its department joined in.
func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*models.Service, error) {
	query := fmt.Sprintf(`SELECT %s, d.name AS department_name, d.is_active AS department_active
		FROM services s
		LEFT JOIN departments d ON d.id = s.department_id
		WHERE s.id = $1 LIMIT 1`, serviceColumns)

	var row serviceRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find service by id: %w", err)
	}

	svc := row.Service
	if row.DepartmentName != nil {
		svc.Department = &models.Department{
			ID:     svc.DepartmentID,
			Name:   *row.DepartmentName,
			Active: row.DepartmentActive != nil && *row.DepartmentActive,
		}
	}
	return &svc, nil
}

// Create inserts a new catalog service.
func (r *ServiceRepository) Create(ctx context.Context, service *models.Service) error {
	if service.ID == "" {
		service.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	service.CreatedAt = now
	service.UpdatedAt = now

	const query = `INSERT INTO services (id, name, description, department_id, fee, processing_time, required_documents, is_active, created_at, updated_at) VALUES (:id, :name, :description, :department_id, :fee, :processing_time, :required_documents, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, service); err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}

// Update updates mutable fields of a catalog service.
func (r *ServiceRepository) Update(ctx context.Context, service *models.Service) error {
	service.UpdatedAt = time.Now().UTC()
	const query = `UPDATE services SET name = :name, description = :description, department_id = :department_id, fee = :fee, processing_time = :processing_time, required_documents = :required_documents, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, service); err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a catalog service.
func (r *ServiceRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE services SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate service: %w", err)
	}
	return nil
}
