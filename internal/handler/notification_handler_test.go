package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/egov-portal-api/internal/middleware"
	"github.com/noah-isme/egov-portal-api/internal/models"
	"github.com/noah-isme/egov-portal-api/internal/service"
)

type fakeNotificationRepo struct {
	notifications []models.Notification
	lastFilter    models.NotificationFilter
	markedRead    []string
}

func (f *fakeNotificationRepo) FindByID(_ context.Context, id string) (*models.Notification, error) {
	for i := range f.notifications {
		if f.notifications[i].ID == id {
			n := f.notifications[i]
			return &n, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeNotificationRepo) List(_ context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	f.lastFilter = filter
	return f.notifications, len(f.notifications), nil
}

func (f *fakeNotificationRepo) CountUnread(context.Context, string) (int, error) {
	return 3, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	f.markedRead = append(f.markedRead, id)
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(context.Context, string) (int64, error) {
	return 2, nil
}

func (f *fakeNotificationRepo) Delete(context.Context, string) error { return nil }

func (f *fakeNotificationRepo) PurgeRead(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func notificationTestContext(t *testing.T, method, target string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, nil)
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, rec
}

func TestNotificationHandlerListScopesToCaller(t *testing.T) {
	repo := &fakeNotificationRepo{notifications: []models.Notification{
		{ID: "n-1", UserID: "user-1", Title: "Request Submitted"},
	}}
	handler := NewNotificationHandler(service.NewNotificationService(repo, time.Hour, zap.NewNop()))

	c, rec := notificationTestContext(t, http.MethodGet, "/notifications?page=2&page_size=5", &models.JWTClaims{
		UserID: "user-1",
		Role:   models.RoleCitizen,
	})

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", repo.lastFilter.UserID)
	assert.Equal(t, 2, repo.lastFilter.Page)
	assert.Equal(t, 5, repo.lastFilter.PageSize)

	var envelope map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope["success"])
	assert.Equal(t, float64(1), envelope["count"])
}

func TestNotificationHandlerListRequiresAuth(t *testing.T) {
	handler := NewNotificationHandler(service.NewNotificationService(&fakeNotificationRepo{}, time.Hour, zap.NewNop()))

	c, rec := notificationTestContext(t, http.MethodGet, "/notifications", nil)

	handler.List(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotificationHandlerUnreadCount(t *testing.T) {
	handler := NewNotificationHandler(service.NewNotificationService(&fakeNotificationRepo{}, time.Hour, zap.NewNop()))

	c, rec := notificationTestContext(t, http.MethodGet, "/notifications/unread-count", &models.JWTClaims{
		UserID: "user-1",
		Role:   models.RoleCitizen,
	})

	handler.UnreadCount(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["unreadCount"])
}

func TestNotificationHandlerMarkReadOwnerOnly(t *testing.T) {
	repo := &fakeNotificationRepo{notifications: []models.Notification{
		{ID: "n-1", UserID: "user-1", Title: "Request Approved"},
	}}
	handler := NewNotificationHandler(service.NewNotificationService(repo, time.Hour, zap.NewNop()))

	c, rec := notificationTestContext(t, http.MethodPatch, "/notifications/n-1/read", &models.JWTClaims{
		UserID: "admin-1",
		Role:   models.RoleAdmin,
	})
	c.Params = gin.Params{{Key: "id", Value: "n-1"}}

	handler.MarkRead(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, repo.markedRead)
}

func TestNotificationHandlerMarkReadNotFound(t *testing.T) {
	handler := NewNotificationHandler(service.NewNotificationService(&fakeNotificationRepo{}, time.Hour, zap.NewNop()))

	c, rec := notificationTestContext(t, http.MethodPatch, "/notifications/missing/read", &models.JWTClaims{
		UserID: "user-1",
		Role:   models.RoleCitizen,
	})
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.MarkRead(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationHandlerMarkAllRead(t *testing.T) {
	handler := NewNotificationHandler(service.NewNotificationService(&fakeNotificationRepo{}, time.Hour, zap.NewNop()))

	c, rec := notificationTestContext(t, http.MethodPatch, "/notifications/read-all", &models.JWTClaims{
		UserID: "user-1",
		Role:   models.RoleCitizen,
	})

	handler.MarkAllRead(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["updated"])
}
