package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/pkg/response"
)

type dsarService interface {
	List(ctx context.Context, filter models.DSARFilter) ([]models.DSAR, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.DSAR, error)
	Create(ctx context.Context, req dto.CreateDSARRequest, actor models.Actor) (*models.DSAR, error)
	Update(ctx context.Context, id string, req dto.UpdateDSARRequest, actor models.Actor) (*models.DSAR, error)
	Transition(ctx context.Context, id string, req dto.TransitionRequest, actor models.Actor) (*models.DSAR, error)
}

// DSARHandler exposes data subject access request endpoints.
type DSARHandler struct {
	service dsarService
}

// NewDSARHandler constructs a DSAR handler.
func NewDSARHandler(svc dsarService) *DSARHandler {
	return &DSARHandler{service: svc}
}

func dsarFilterFromQuery(c *gin.Context) (models.DSARFilter, error) {
	filter := models.DSARFilter{
		Status:            statusQuery[models.DSARStatus](c),
		RequestType:       models.DSARRequestType(c.Query("request_type")),
		JurisdictionCode:  c.Query("jurisdiction"),
		AssignedOfficerID: c.Query("officer"),
		Search:            c.Query("search"),
		PageRequest:       pageFromQuery(c),
	}
	overdue, err := boolQuery(c, "overdue")
	if err != nil {
		return filter, err
	}
	if overdue != nil && *overdue {
		now := time.Now().UTC()
		filter.OverdueAt = &now
	}
	return filter, nil
}

// List godoc
// @Summary List DSARs
// @Tags DSARs
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param request_type query string false "Request type"
// @Param jurisdiction query string false "Jurisdiction code"
// @Param officer query string false "Assigned officer ID"
// @Param search query string false "Reference or subject search"
// @Param overdue query bool false "Only open requests past their due date"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /dsars [get]
func (h *DSARHandler) List(c *gin.Context) {
	filter, err := dsarFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, pagination)
}

// Get godoc
// @Summary Get DSAR
// @Tags DSARs
// @Produce json
// @Param id path string true "DSAR ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dsars/{id} [get]
func (h *DSARHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Log a DSAR
// @Tags DSARs
// @Accept json
// @Produce json
// @Param payload body dto.CreateDSARRequest true "DSAR payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /dsars [post]
func (h *DSARHandler) Create(c *gin.Context) {
	var req dto.CreateDSARRequest
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
// @Summary Update DSAR
// @Tags DSARs
// @Accept json
// @Produce json
// @Param id path string true "DSAR ID"
// @Param payload body dto.UpdateDSARRequest true "DSAR payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dsars/{id} [put]
func (h *DSARHandler) Update(c *gin.Context) {
	var req dto.UpdateDSARRequest
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

// Transition godoc
// @Summary Change DSAR status
// @Tags DSARs
// @Accept json
// @Produce json
// @Param id path string true "DSAR ID"
// @Param payload body dto.TransitionRequest true "Transition"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /dsars/{id}/transition [post]
func (h *DSARHandler) Transition(c *gin.Context) {
	var req dto.TransitionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Transition(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
