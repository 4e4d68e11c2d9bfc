package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/egov-portal-api/internal/models"
	"github.com/noah-isme/egov-portal-api/internal/service"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
	"github.com/noah-isme/egov-portal-api/pkg/response"
)

// NotificationHandler handles the per-user notification inbox.
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary List notifications
// @Description List the caller's notifications, newest first
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param is_read query bool false "Read filter"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.NotificationFilter
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}
	if isRead := c.Query("is_read"); isRead != "" {
		if val, err := strconv.ParseBool(isRead); err == nil {
			filter.IsRead = &val
		}
	}

	notifications, total, err := h.service.List(c.Request.Context(), sub, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Collection(c, notifications, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// UnreadCount godoc
// @Summary Unread count
// @Description Number of unread notifications for the caller
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), sub)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", gin.H{"unreadCount": count})
}

// MarkRead godoc
// @Summary Mark notification read
// @Description Mark one of the caller's notifications as read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	notification, err := h.service.MarkRead(c.Request.Context(), sub, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "notification marked as read", notification)
}

// MarkAllRead godoc
// @Summary Mark all read
// @Description Mark all of the caller's notifications as read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /notifications/read-all [patch]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	n, err := h.service.MarkAllRead(c.Request.Context(), sub)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "all notifications marked as read", gin.H{"updated": n})
}

// Delete godoc
// @Summary Delete notification
// @Description Delete one of the caller's notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), sub, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "notification deleted", nil)
}
