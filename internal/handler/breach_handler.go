package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/pkg/response"
)

type breachService interface {
	List(ctx context.Context, filter models.BreachFilter) ([]models.Breach, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Breach, error)
	Create(ctx context.Context, req dto.CreateBreachRequest, actor models.Actor) (*models.Breach, error)
	Update(ctx context.Context, id string, req dto.UpdateBreachRequest, actor models.Actor) (*models.Breach, error)
	Transition(ctx context.Context, id string, req dto.TransitionRequest, actor models.Actor) (*models.Breach, error)
	MarkRegulatorNotified(ctx context.Context, id string, req dto.NotifyRegulatorRequest, actor models.Actor) (*models.Breach, error)
}

// BreachHandler exposes breach register endpoints.
type BreachHandler struct {
	service breachService
}

// NewBreachHandler constructs a breach handler.
func NewBreachHandler(svc breachService) *BreachHandler {
	return &BreachHandler{service: svc}
}

func breachFilterFromQuery(c *gin.Context) (models.BreachFilter, error) {
	notified, err := boolQuery(c, "regulator_notified")
	if err != nil {
		return models.BreachFilter{}, err
	}
	return models.BreachFilter{
		Status:            statusQuery[models.BreachStatus](c),
		Severity:          models.BreachSeverity(c.Query("severity")),
		JurisdictionCode:  c.Query("jurisdiction"),
		RegulatorNotified: notified,
		Search:            c.Query("search"),
		PageRequest:       pageFromQuery(c),
	}, nil
}

// List godoc
// @Summary List breaches
// @Tags Breaches
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param severity query string false "Severity"
// @Param jurisdiction query string false "Jurisdiction code"
// @Param regulator_notified query bool false "Regulator notified"
// @Param search query string false "Reference or title search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /breaches [get]
func (h *BreachHandler) List(c *gin.Context) {
	filter, err := breachFilterFromQuery(c)
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
// @Summary Get breach
// @Tags Breaches
// @Produce json
// @Param id path string true "Breach ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /breaches/{id} [get]
func (h *BreachHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Record a breach
// @Tags Breaches
// @Accept json
// @Produce json
// @Param payload body dto.CreateBreachRequest true "Breach payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /breaches [post]
func (h *BreachHandler) Create(c *gin.Context) {
	var req dto.CreateBreachRequest
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
// @Summary Update breach
// @Tags Breaches
// @Accept json
// @Produce json
// @Param id path string true "Breach ID"
// @Param payload body dto.UpdateBreachRequest true "Breach payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /breaches/{id} [put]
func (h *BreachHandler) Update(c *gin.Context) {
	var req dto.UpdateBreachRequest
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
// @Summary Change breach status
// @Tags Breaches
// @Accept json
// @Produce json
// @Param id path string true "Breach ID"
// @Param payload body dto.TransitionRequest true "Transition"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /breaches/{id}/transition [post]
func (h *BreachHandler) Transition(c *gin.Context) {
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

// NotifyRegulator godoc
// @Summary Mark the regulator as notified
// @Tags Breaches
// @Accept json
// @Produce json
// @Param id path string true "Breach ID"
// @Param payload body dto.NotifyRegulatorRequest true "Notification details"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /breaches/{id}/notify-regulator [post]
func (h *BreachHandler) NotifyRegulator(c *gin.Context) {
	var req dto.NotifyRegulatorRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.MarkRegulatorNotified(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
