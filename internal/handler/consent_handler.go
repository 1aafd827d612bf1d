package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/pkg/response"
)

type consentService interface {
	List(ctx context.Context, filter models.ConsentFilter) ([]models.ConsentRecord, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.ConsentRecord, error)
	Create(ctx context.Context, req dto.CreateConsentRequest, actor models.Actor) (*models.ConsentRecord, error)
	Update(ctx context.Context, id string, req dto.UpdateConsentRequest, actor models.Actor) (*models.ConsentRecord, error)
	Transition(ctx context.Context, id string, req dto.TransitionRequest, actor models.Actor) (*models.ConsentRecord, error)
}

// ConsentHandler exposes consent endpoints.
type ConsentHandler struct {
	service consentService
}

// NewConsentHandler constructs a consent handler.
func NewConsentHandler(svc consentService) *ConsentHandler {
	return &ConsentHandler{service: svc}
}

// List godoc
// @Summary List consent records
// @Tags Consents
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param data_subject_id query string false "Data subject identifier"
// @Param purpose query string false "Processing purpose"
// @Param jurisdiction query string false "Jurisdiction code"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /consents [get]
func (h *ConsentHandler) List(c *gin.Context) {
	filter := models.ConsentFilter{
		Status:           statusQuery[models.ConsentStatus](c),
		DataSubjectID:    c.Query("data_subject_id"),
		Purpose:          c.Query("purpose"),
		JurisdictionCode: c.Query("jurisdiction"),
		PageRequest:      pageFromQuery(c),
	}
	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, pagination)
}

// Get godoc
// @Summary Get consent
// @Tags Consents
// @Produce json
// @Param id path string true "Consent ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /consents/{id} [get]
func (h *ConsentHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Record consent
// @Tags Consents
// @Accept json
// @Produce json
// @Param payload body dto.CreateConsentRequest true "Consent payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /consents [post]
func (h *ConsentHandler) Create(c *gin.Context) {
	var req dto.CreateConsentRequest
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
// @Summary Update consent
// @Tags Consents
// @Accept json
// @Produce json
// @Param id path string true "Consent ID"
// @Param payload body dto.UpdateConsentRequest true "Consent payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /consents/{id} [put]
func (h *ConsentHandler) Update(c *gin.Context) {
	var req dto.UpdateConsentRequest
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
// @Summary Change consent status
// @Tags Consents
// @Accept json
// @Produce json
// @Param id path string true "Consent ID"
// @Param payload body dto.TransitionRequest true "Transition"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /consents/{id}/transition [post]
func (h *ConsentHandler) Transition(c *gin.Context) {
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
