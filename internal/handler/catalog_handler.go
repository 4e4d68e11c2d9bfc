package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/egov-portal-api/internal/models"
	"github.com/noah-isme/egov-portal-api/internal/service"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
	"github.com/noah-isme/egov-portal-api/pkg/response"
)

// CatalogHandler handles the public service catalog and its admin management.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// List godoc
// @Summary List services
// @Description List the government service catalog
// @Tags Services
// @Produce json
// @Param department_id query string false "Department filter"
// @Param is_active query bool false "Active filter"
// @Success 200 {object} response.Envelope
// @Router /services [get]
func (h *CatalogHandler) List(c *gin.Context) {
	var filter models.ServiceFilter
	if departmentID := c.Query("department_id"); departmentID != "" {
		filter.DepartmentID = &departmentID
	}
	if active := c.Query("is_active"); active != "" {
		if val, err := strconv.ParseBool(active); err == nil {
			filter.Active = &val
		}
	} else {
		// the public catalog defaults to active entries
		active := true
		filter.Active = &active
	}

	services, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", services)
}

// Get godoc
// @Summary Get service
// @Description Get a catalog service by ID
// @Tags Services
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /services/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	svc, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", svc)
}

// Create godoc
// @Summary Create service
// @Description Add a catalog entry bound to a department (admin only)
// @Tags Services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.ServiceRequestPayload true "Service payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /services [post]
func (h *CatalogHandler) Create(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload service.ServiceRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	svc, err := h.service.Create(c.Request.Context(), sub, &payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "service created successfully", svc)
}

// Update godoc
// @Summary Update service
// @Description Edit a catalog entry (admin only)
// @Tags Services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Service ID"
// @Param payload body service.ServiceRequestPayload true "Service payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /services/{id} [put]
func (h *CatalogHandler) Update(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload service.ServiceRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	svc, err := h.service.Update(c.Request.Context(), sub, c.Param("id"), &payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "service updated", svc)
}

// Delete godoc
// @Summary Delete service
// @Description Soft-deactivate a catalog entry (admin only)
// @Tags Services
// @Produce json
// @Security BearerAuth
// @Param id path string true "Service ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /services/{id} [delete]
func (h *CatalogHandler) Delete(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), sub, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "service deactivated", nil)
}
