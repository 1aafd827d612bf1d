package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/pkg/response"
)

type ropaService interface {
	List(ctx context.Context, filter models.ROPAFilter) ([]models.ROPAActivity, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.ROPAActivity, error)
	Create(ctx context.Context, req dto.CreateROPARequest, actor models.Actor) (*models.ROPAActivity, error)
	Update(ctx context.Context, id string, req dto.UpdateROPARequest, actor models.Actor) (*models.ROPAActivity, error)
	Transition(ctx context.Context, id string, req dto.TransitionRequest, actor models.Actor) (*models.ROPAActivity, error)
}

// ROPAHandler exposes record of processing activities endpoints.
type ROPAHandler struct {
	service ropaService
}

// NewROPAHandler constructs a ROPA handler.
func NewROPAHandler(svc ropaService) *ROPAHandler {
	return &ROPAHandler{service: svc}
}

// List godoc
// @Summary List processing activities
// @Tags ROPA
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param lawful_basis query string false "Lawful basis"
// @Param search query string false "Name search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /ropa [get]
func (h *ROPAHandler) List(c *gin.Context) {
	filter := models.ROPAFilter{
		Status:      statusQuery[models.ROPAStatus](c),
		LawfulBasis: models.LawfulBasis(c.Query("lawful_basis")),
		Search:      c.Query("search"),
		PageRequest: pageFromQuery(c),
	}
	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, pagination)
}

// Get godoc
// @Summary Get ROPA activity
// @Tags ROPA
// @Produce json
// @Param id path string true "ROPA activity ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /ropa/{id} [get]
func (h *ROPAHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Register a processing activity
// @Tags ROPA
// @Accept json
// @Produce json
// @Param payload body dto.CreateROPARequest true "ROPA activity payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /ropa [post]
func (h *ROPAHandler) Create(c *gin.Context) {
	var req dto.CreateROPARequest
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
// @Summary Update ROPA activity
// @Tags ROPA
// @Accept json
// @Produce json
// @Param id path string true "ROPA activity ID"
// @Param payload body dto.UpdateROPARequest true "ROPA activity payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /ropa/{id} [put]
func (h *ROPAHandler) Update(c *gin.Context) {
	var req dto.UpdateROPARequest
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
// @Summary Change ROPA activity status
// @Tags ROPA
// @Accept json
// @Produce json
// @Param id path string true "ROPA activity ID"
// @Param payload body dto.TransitionRequest true "Transition"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /ropa/{id}/transition [post]
func (h *ROPAHandler) Transition(c *gin.Context) {
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
