package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/egov-portal-api/internal/authz"
	"github.com/noah-isme/egov-portal-api/internal/models"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
	"github.com/noah-isme/egov-portal-api/pkg/export"
)

const dashboardCachePrefix = "dashboard:"

// DashboardReport aggregates portal figures for staff dashboards. Payment
// and user figures appear only for admins.
type DashboardReport struct {
	Requests    *models.RequestStats `json:"requests"`
	Payments    *models.PaymentStats `json:"payments,omitempty"`
	Users       *models.UserStats    `json:"users,omitempty"`
	GeneratedAt time.Time            `json:"generatedAt"`
}

// ReportService builds dashboards and request exports for department heads
// and admins.
type ReportService struct {
	requests requestRepository
	payments paymentRepository
	users    userRepository
	cache    catalogCache
	ttl      time.Duration
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewReportService creates a ReportService.
func NewReportService(requests requestRepository, payments paymentRepository, users userRepository, cache catalogCache, ttl time.Duration, logger *zap.Logger) *ReportService {
	return &ReportService{
		requests: requests,
		payments: payments,
		users:    users,
		cache:    cache,
		ttl:      ttl,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// Dashboard returns the caller's aggregate view, cached per scope.
func (s *ReportService) Dashboard(ctx context.Context, sub authz.Subject) (*DashboardReport, error) {
	if !authz.Can(sub, authz.OpReportExport, authz.Scope{}) {
		return nil, appErrors.ErrForbidden
	}

	scope, key, err := s.scopeAndKey(sub)
	if err != nil {
		return nil, err
	}

	var cached DashboardReport
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Sugar().Warnw("dashboard cache read failed", "key", key, "error", err)
	}

	report := &DashboardReport{GeneratedAt: time.Now().UTC()}

	report.Requests, err = s.requests.Stats(ctx, scope)
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	if sub.Role == models.RoleAdmin {
		report.Payments, err = s.payments.Stats(ctx)
		if err != nil {
			return nil, appErrors.FromError(err)
		}
		report.Users, err = s.users.Stats(ctx)
		if err != nil {
			return nil, appErrors.FromError(err)
		}
	}

	if err := s.cache.Set(ctx, key, report, s.ttl); err != nil {
		s.logger.Sugar().Warnw("dashboard cache write failed", "key", key, "error", err)
	}
	return report, nil
}

// ExportRequests renders the caller's visible requests as CSV or PDF.
func (s *ReportService) ExportRequests(ctx context.Context, sub authz.Subject, format string, filter models.RequestFilter) ([]byte, string, error) {
	if !authz.Can(sub, authz.OpReportExport, authz.Scope{}) {
		return nil, "", appErrors.ErrForbidden
	}

	scope, _, err := s.scopeAndKey(sub)
	if err != nil {
		return nil, "", err
	}

	filter.Page = 1
	filter.PageSize = 100
	var rows []map[string]string
	for {
		requests, total, err := s.requests.List(ctx, filter, scope)
		if err != nil {
			return nil, "", appErrors.FromError(err)
		}
		for _, request := range requests {
			rows = append(rows, map[string]string{
				"Request Number": request.RequestNumber,
				"Service":        request.ServiceName,
				"Citizen":        request.CitizenName,
				"Status":         string(request.Status),
				"Priority":       string(request.Priority),
				"Fee":            fmt.Sprintf("%.2f", request.ServiceFee),
				"Created":        request.CreatedAt.Format("2006-01-02"),
			})
		}
		if filter.Page*filter.PageSize >= total || len(requests) == 0 {
			break
		}
		filter.Page++
	}

	dataset := export.Dataset{
		Headers: []string{"Request Number", "Service", "Citizen", "Status", "Priority", "Fee", "Created"},
		Rows:    rows,
	}

	switch format {
	case "csv":
		out, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.FromError(err)
		}
		return out, "text/csv", nil
	case "pdf":
		out, err := s.pdf.Render(dataset, "Service Requests Report")
		if err != nil {
			return nil, "", appErrors.FromError(err)
		}
		return out, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *ReportService) scopeAndKey(sub authz.Subject) (models.RequestScope, string, error) {
	switch sub.Role {
	case models.RoleAdmin:
		return models.RequestScope{}, dashboardCachePrefix + "global", nil
	case models.RoleDepartmentHead:
		if sub.DepartmentID == nil {
			return models.RequestScope{}, "", appErrors.Clone(appErrors.ErrForbidden, "no department assigned")
		}
		return models.RequestScope{DepartmentID: sub.DepartmentID}, dashboardCachePrefix + *sub.DepartmentID, nil
	default:
		return models.RequestScope{}, "", appErrors.ErrForbidden
	}
}
