package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/egov-portal-api/internal/models"
)

// requestColumns joins the denormalised fields every caller needs: the
// service name and fee, the owning department (authorization scoping key)
// and the citizen's name and email for notifications.
const requestColumns = `r.id, r.request_number, r.user_id, r.service_id, r.status, r.priority, r.notes,
	r.reviewed_by, r.review_comments, r.reviewed_at, r.completed_at, r.created_at, r.updated_at,
	s.name AS service_name, s.fee AS service_fee, s.department_id AS department_id,
	u.name AS citizen_name, u.email AS citizen_email`

const requestJoins = `FROM requests r
	JOIN services s ON s.id = r.service_id
	JOIN users u ON u.id = r.user_id`

// RequestRepository provides database access for service requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository creates a new instance of RequestRepository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// FindByID returns a request with its service, department and citizen joined.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.Request, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE r.id = $1 LIMIT 1`, requestColumns, requestJoins)
	var request models.Request
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find request by id: %w", err)
	}
	return &request, nil
}

// List returns requests matching the filter inside the caller's scope,
// with total count for pagination.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter, scope models.RequestScope) ([]models.Request, int, error) {
	baseQuery := requestJoins + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if scope.UserID != nil {
		args = append(args, *scope.UserID)
		conditions = append(conditions, fmt.Sprintf("r.user_id = $%d", len(args)))
	}
	if scope.DepartmentID != nil {
		args = append(args, *scope.DepartmentID)
		conditions = append(conditions, fmt.Sprintf("s.department_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		conditions = append(conditions, fmt.Sprintf("r.priority = $%d", len(args)))
	}
	if filter.ServiceID != nil {
		args = append(args, *filter.ServiceID)
		conditions = append(conditions, fmt.Sprintf("r.service_id = $%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		conditions = append(conditions, fmt.Sprintf("s.department_id = $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("r.user_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(r.request_number) LIKE $%d OR LOWER(s.name) LIKE $%d)", len(args), len(args)))
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"created_at":     "r.created_at",
		"updated_at":     "r.updated_at",
		"status":         "r.status",
		"priority":       "r.priority",
		"request_number": "r.request_number",
	}
	sortColumn, ok := allowedSorts[sortBy]
	if !ok {
		sortColumn = "r.created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", requestColumns, baseQuery, sortColumn, sortOrder, pageSize, offset)

	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	return requests, total, nil
}

// Create inserts a new request.
func (r *RequestRepository) Create(ctx context.Context, request *models.Request) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	request.CreatedAt = now
	request.UpdatedAt = now

	const query = `INSERT INTO requests (id, request_number, user_id, service_id, status, priority, notes, created_at, updated_at) VALUES (:id, :request_number, :user_id, :service_id, :status, :priority, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// UpdateStatus persists the outcome of a status transition.
func (r *RequestRepository) UpdateStatus(ctx context.Context, request *models.Request) error {
	const query = `UPDATE requests SET status = :status, reviewed_by = :reviewed_by, review_comments = :review_comments, reviewed_at = :reviewed_at, completed_at = :completed_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	return nil
}

// Delete removes a request. Dependent documents, payments and notifications
// cascade at the database level.
func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM requests WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return nil
}

// Stats returns request counts by status inside the caller's scope.
func (r *RequestRepository) Stats(ctx context.Context, scope models.RequestScope) (*models.RequestStats, error) {
	query := `SELECT
		COUNT(*) AS total,
		COUNT(CASE WHEN r.status = 'submitted' THEN 1 END) AS submitted,
		COUNT(CASE WHEN r.status = 'under_review' THEN 1 END) AS under_review,
		COUNT(CASE WHEN r.status = 'approved' THEN 1 END) AS approved,
		COUNT(CASE WHEN r.status = 'rejected' THEN 1 END) AS rejected,
		COUNT(CASE WHEN r.status = 'completed' THEN 1 END) AS completed
	FROM requests r
	JOIN services s ON s.id = r.service_id
	WHERE 1=1`
	var args []interface{}

	if scope.UserID != nil {
		args = append(args, *scope.UserID)
		query += fmt.Sprintf(" AND r.user_id = $%d", len(args))
	}
	if scope.DepartmentID != nil {
		args = append(args, *scope.DepartmentID)
		query += fmt.Sprintf(" AND s.department_id = $%d", len(args))
	}

	var stats struct {
		Total       int `db:"total"`
		Submitted   int `db:"submitted"`
		UnderReview int `db:"under_review"`
		Approved    int `db:"approved"`
		Rejected    int `db:"rejected"`
		Completed   int `db:"completed"`
	}
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("request stats: %w", err)
	}

	return &models.RequestStats{
		Total:       stats.Total,
		Submitted:   stats.Submitted,
		UnderReview: stats.UnderReview,
		Approved:    stats.Approved,
		Rejected:    stats.Rejected,
		Completed:   stats.Completed,
	}, nil
}
