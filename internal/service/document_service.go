package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/egov-portal-api/internal/authz"
	"github.com/noah-isme/egov-portal-api/internal/models"
	"github.com/noah-isme/egov-portal-api/pkg/config"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
	"github.com/noah-isme/egov-portal-api/pkg/storage"
)

// documentRepository is the slice of the document repository the service
// uses.
type documentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Document, error)
	ListByRequest(ctx context.Context, requestID string) ([]models.Document, error)
	Create(ctx context.Context, document *models.Document) error
	Delete(ctx context.Context, id string) error
}

// DocumentUpload describes an incoming file from the handler layer.
type DocumentUpload struct {
	OriginalName string
	ContentType  string
	Size         int64
	Body         io.Reader
}

// DocumentService stores uploaded files on disk and their metadata in the
// database. Upload and read access follow the owning request; deletion is
// restricted to the uploader or an admin.
type DocumentService struct {
	documents documentRepository
	requests  requestReader
	store     *storage.LocalStorage
	cfg       config.DocumentsConfig
	logger    *zap.Logger
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(documents documentRepository, requests requestReader, store *storage.LocalStorage, cfg config.DocumentsConfig, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		documents: documents,
		requests:  requests,
		store:     store,
		cfg:       cfg,
		logger:    logger,
	}
}

// Upload validates and stores a file for a request.
func (s *DocumentService) Upload(ctx context.Context, sub authz.Subject, requestID string, upload *DocumentUpload) (*models.Document, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err, "request not found")
	}
	if !authz.Can(sub, authz.OpDocumentUpload, requestScope(request)) {
		return nil, appErrors.ErrForbidden
	}

	if upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}
	if upload.Size > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("file exceeds maximum size of %d bytes", s.cfg.MaxFileSizeBytes))
	}
	if !s.mimeAllowed(upload.ContentType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file type not allowed")
	}

	storedName := uuid.NewString() + filepath.Ext(upload.OriginalName)
	storedPath, err := s.store.SaveStream(storedName, upload.Body)
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	document := &models.Document{
		RequestID:    request.ID,
		FileName:     storedName,
		OriginalName: upload.OriginalName,
		FilePath:     storedPath,
		FileType:     upload.ContentType,
		FileSize:     upload.Size,
		UploadedBy:   sub.ID,
	}
	if err := s.documents.Create(ctx, document); err != nil {
		// Roll back the orphaned file; metadata is the source of truth.
		if cleanupErr := s.store.Delete(storedName); cleanupErr != nil {
			s.logger.Sugar().Warnw("failed to remove orphaned upload", "file", storedName, "error", cleanupErr)
		}
		return nil, appErrors.FromError(err)
	}

	s.logger.Sugar().Infow("document uploaded",
		"document_id", document.ID, "request_id", request.ID, "size", upload.Size)
	return document, nil
}

// List returns the documents of a request the caller may read.
func (s *DocumentService) List(ctx context.Context, sub authz.Subject, requestID string) ([]models.Document, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err, "request not found")
	}
	if !authz.Can(sub, authz.OpDocumentRead, requestScope(request)) {
		return nil, appErrors.ErrForbidden
	}

	documents, err := s.documents.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return documents, nil
}

// Download opens a stored file for an authorized caller. The caller owns the
// returned handle.
func (s *DocumentService) Download(ctx context.Context, sub authz.Subject, id string) (*models.Document, *os.File, error) {
	document, request, err := s.resolve(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !authz.Can(sub, authz.OpDocumentRead, requestScope(request)) {
		return nil, nil, appErrors.ErrForbidden
	}

	file, err := s.store.Open(document.FileName)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "stored file is missing")
	}
	return document, file, nil
}

// Delete removes a document. Only the uploader or an admin may delete.
func (s *DocumentService) Delete(ctx context.Context, sub authz.Subject, id string) error {
	document, request, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}

	scope := requestScope(request)
	scope.UploaderID = document.UploadedBy
	if !authz.Can(sub, authz.OpDocumentDelete, scope) {
		return appErrors.ErrForbidden
	}

	if err := s.documents.Delete(ctx, document.ID); err != nil {
		return appErrors.FromError(err)
	}
	if err := s.store.Delete(document.FileName); err != nil {
		s.logger.Sugar().Warnw("document row removed but file deletion failed",
			"document_id", document.ID, "file", document.FileName, "error", err)
	}

	s.logger.Sugar().Infow("document deleted", "document_id", document.ID, "actor", sub.ID)
	return nil
}

func (s *DocumentService) resolve(ctx context.Context, id string) (*models.Document, *models.Request, error) {
	document, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "document not found")
	}
	request, err := s.requests.FindByID(ctx, document.RequestID)
	if err != nil {
		return nil, nil, notFoundOr(err, "request not found")
	}
	return document, request, nil
}

func (s *DocumentService) mimeAllowed(contentType string) bool {
	if len(s.cfg.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedMIMEs {
		if allowed == contentType {
			return true
		}
	}
	return false
}
