package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/pkg/response"
)

type officerService interface {
	List(ctx context.Context, filter models.OfficerFilter) ([]models.PrivacyOfficer, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.PrivacyOfficer, error)
	Create(ctx context.Context, req dto.UpsertOfficerRequest, actor models.Actor) (*models.PrivacyOfficer, error)
	Update(ctx context.Context, id string, req dto.UpsertOfficerRequest, actor models.Actor) (*models.PrivacyOfficer, error)
	ToggleActive(ctx context.Context, id string, actor models.Actor) (*models.PrivacyOfficer, error)
	Delete(ctx context.Context, id string, actor models.Actor) error
}

// OfficerHandler exposes the privacy officer registry.
type OfficerHandler struct {
	service officerService
}

// NewOfficerHandler constructs an officer handler.
func NewOfficerHandler(svc officerService) *OfficerHandler {
	return &OfficerHandler{service: svc}
}

// List godoc
// @Summary List privacy officers
// @Tags Officers
// @Produce json
// @Param jurisdiction query string false "Jurisdiction code"
// @Param active query bool false "Active flag"
// @Param search query string false "Name or email search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /officers [get]
func (h *OfficerHandler) List(c *gin.Context) {
	active, err := boolQuery(c, "active")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), models.OfficerFilter{
		JurisdictionCode: c.Query("jurisdiction"),
		IsActive:         active,
		Search:           c.Query("search"),
		PageRequest:      pageFromQuery(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, pagination)
}

// Get godoc
// @Summary Get privacy officer
// @Tags Officers
// @Produce json
// @Param id path string true "Officer ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /officers/{id} [get]
func (h *OfficerHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Register privacy officer
// @Tags Officers
// @Accept json
// @Produce json
// @Param payload body dto.UpsertOfficerRequest true "Officer payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /officers [post]
func (h *OfficerHandler) Create(c *gin.Context) {
	var req dto.UpsertOfficerRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update privacy officer
// @Tags Officers
// @Accept json
// @Produce json
// @Param id path string true "Officer ID"
// @Param payload body dto.UpsertOfficerRequest true "Officer payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /officers/{id} [put]
func (h *OfficerHandler) Update(c *gin.Context) {
	var req dto.UpsertOfficerRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Toggle godoc
// @Summary Flip the active flag
// @Tags Officers
// @Produce json
// @Param id path string true "Officer ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /officers/{id}/toggle [post]
func (h *OfficerHandler) Toggle(c *gin.Context) {
	item, err := h.service.ToggleActive(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete privacy officer
// @Tags Officers
// @Param id path string true "Officer ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /officers/{id} [delete]
func (h *OfficerHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
