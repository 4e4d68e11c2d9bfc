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

const paymentColumns = `p.id, p.transaction_id, p.request_id, p.user_id, p.amount, p.payment_method, p.payment_status, p.payment_date, p.receipt_number, p.created_at, p.updated_at, r.request_number AS request_number`

// PaymentRepository provides database access for simulated payments.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// FindByID returns a payment by identifier with its request number joined.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments p JOIN requests r ON r.id = p.request_id WHERE p.id = $1 LIMIT 1`, paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find payment by id: %w", err)
	}
	return &payment, nil
}

// FindByRequest returns the payment recorded for a request, if any.
func (r *PaymentRepository) FindByRequest(ctx context.Context, requestID string) (*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments p JOIN requests r ON r.id = p.request_id WHERE p.request_id = $1 LIMIT 1`, paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, requestID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find payment by request: %w", err)
	}
	return &payment, nil
}

// ExistsForRequest reports whether a payment row already exists for a
// request, whatever its status. One draw per request, failed draws included.
func (r *PaymentRepository) ExistsForRequest(ctx context.Context, requestID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM payments WHERE request_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, requestID); err != nil {
		return false, fmt.Errorf("check payment exists: %w", err)
	}
	return exists, nil
}

// List returns payments matching the filter with total count. A nil userID
// lists across all users (admin view).
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter, userID *string) ([]models.Payment, int, error) {
	baseQuery := `FROM payments p JOIN requests r ON r.id = p.request_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if userID != nil {
		args = append(args, *userID)
		conditions = append(conditions, fmt.Sprintf("p.user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("p.payment_status = $%d", len(args)))
	}
	if filter.Method != nil {
		args = append(args, *filter.Method)
		conditions = append(conditions, fmt.Sprintf("p.payment_method = $%d", len(args)))
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY p.created_at DESC LIMIT %d OFFSET %d", paymentColumns, baseQuery, pageSize, offset)

	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	return payments, total, nil
}

// Create inserts a payment row.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	const query = `INSERT INTO payments (id, transaction_id, request_id, user_id, amount, payment_method, payment_status, payment_date, receipt_number, created_at, updated_at) VALUES (:id, :transaction_id, :request_id, :user_id, :amount, :payment_method, :payment_status, :payment_date, :receipt_number, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// UpdateStatus updates a payment's status, used for refunds.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	const query = `UPDATE payments SET payment_status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

// Stats returns aggregate payment figures. Revenue counts completed payments
// only.
func (r *PaymentRepository) Stats(ctx context.Context) (*models.PaymentStats, error) {
	const query = `SELECT
		COUNT(*) AS total_transactions,
		COALESCE(SUM(CASE WHEN payment_status = 'completed' THEN amount END), 0) AS total_revenue,
		COUNT(CASE WHEN payment_status = 'completed' THEN 1 END) AS completed_payments,
		COUNT(CASE WHEN payment_status = 'failed' THEN 1 END) AS failed_payments
	FROM payments`

	var stats struct {
		TotalTransactions int     `db:"total_transactions"`
		TotalRevenue      float64 `db:"total_revenue"`
		CompletedPayments int     `db:"completed_payments"`
		FailedPayments    int     `db:"failed_payments"`
	}
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("payment stats: %w", err)
	}
	return &models.PaymentStats{
		TotalTransactions: stats.TotalTransactions,
		TotalRevenue:      stats.TotalRevenue,
		CompletedPayments: stats.CompletedPayments,
		FailedPayments:    stats.FailedPayments,
	}, nil
}
