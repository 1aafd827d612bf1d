package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/pkg/response"
)

type complaintService interface {
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Complaint, error)
	Create(ctx context.Context, req dto.CreateComplaintRequest, actor models.Actor) (*models.Complaint, error)
	Update(ctx context.Context, id string, req dto.UpdateComplaintRequest, actor models.Actor) (*models.Complaint, error)
	Transition(ctx context.Context, id string, req dto.TransitionRequest, actor models.Actor) (*models.Complaint, error)
}

// ComplaintHandler exposes complaint endpoints.
type ComplaintHandler struct {
	service complaintService
}

// NewComplaintHandler constructs a complaint handler.
func NewComplaintHandler(svc complaintService) *ComplaintHandler {
	return &ComplaintHandler{service: svc}
}

// List godoc
// @Summary List complaints
// @Tags Complaints
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param complaint_type query string false "Complaint type"
// @Param search query string false "Reference or complainant search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /complaints [get]
func (h *ComplaintHandler) List(c *gin.Context) {
	filter := models.ComplaintFilter{
		Status:        statusQuery[models.ComplaintStatus](c),
		ComplaintType: c.Query("complaint_type"),
		Search:        c.Query("search"),
		PageRequest:   pageFromQuery(c),
	}
	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, pagination)
}

// Get godoc
// @Summary Get complaint
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /complaints/{id} [get]
func (h *ComplaintHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Log a complaint
// @Tags Complaints
// @Accept json
// @Produce json
// @Param payload body dto.CreateComplaintRequest true "Complaint payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /complaints [post]
func (h *ComplaintHandler) Create(c *gin.Context) {
	var req dto.CreateComplaintRequest
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
// @Summary Update complaint
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.UpdateComplaintRequest true "Complaint payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /complaints/{id} [put]
func (h *ComplaintHandler) Update(c *gin.Context) {
	var req dto.UpdateComplaintRequest
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
// @Summary Change complaint status
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.TransitionRequest true "Transition"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /complaints/{id}/transition [post]
func (h *ComplaintHandler) Transition(c *gin.Context) {
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
