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

const documentColumns = `id, request_id, file_name, original_name, file_path, file_type, file_size, uploaded_by, created_at, updated_at`

// DocumentRepository provides database access for request documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// FindByID returns a document by identifier.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1 LIMIT 1`, documentColumns)
	var document models.Document
	if err := r.db.GetContext(ctx, &document, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	return &document, nil
}

// ListByRequest returns all documents attached to a request, newest first.
func (r *DocumentRepository) ListByRequest(ctx context.Context, requestID string) ([]models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE request_id = $1 ORDER BY created_at DESC`, documentColumns)
	var documents []models.Document
	if err := r.db.SelectContext(ctx, &documents, query, requestID); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return documents, nil
}

// Create inserts a document metadata row.
func (r *DocumentRepository) Create(ctx context.Context, document *models.Document) error {
	if document.ID == "" {
		document.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	document.CreatedAt = now
	document.UpdatedAt = now

	const query = `INSERT INTO documents (id, request_id, file_name, original_name, file_path, file_type, file_size, uploaded_by, created_at, updated_at) VALUES (:id, :request_id, :file_name, :original_name, :file_path, :file_type, :file_size, :uploaded_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, document); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// Delete removes a document metadata row.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM documents WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
