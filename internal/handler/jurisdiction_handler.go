package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/pkg/response"
)

type jurisdictionService interface {
	List(ctx context.Context, filter models.JurisdictionFilter) ([]models.Jurisdiction, error)
	Get(ctx context.Context, code string) (*models.Jurisdiction, error)
	Upsert(ctx context.Context, originalCode string, req dto.UpsertJurisdictionRequest, actor models.Actor) (*models.Jurisdiction, error)
	ToggleActive(ctx context.Context, code string, actor models.Actor) (*models.Jurisdiction, error)
	Delete(ctx context.Context, code string, actor models.Actor) error
}

// JurisdictionHandler exposes the jurisdiction registry.
type JurisdictionHandler struct {
	service jurisdictionService
}

// NewJurisdictionHandler constructs a jurisdiction handler.
func NewJurisdictionHandler(svc jurisdictionService) *JurisdictionHandler {
	return &JurisdictionHandler{service: svc}
}

// List godoc
// @Summary List jurisdictions
// @Tags Jurisdictions
// @Produce json
// @Param active query bool false "Only active jurisdictions"
// @Param country query string false "Country"
// @Param search query string false "Code or name search"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /jurisdictions [get]
func (h *JurisdictionHandler) List(c *gin.Context) {
	active, err := boolQuery(c, "active")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), models.JurisdictionFilter{
		IsActive: active,
		Country:  c.Query("country"),
		Search:   c.Query("search"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, nil)
}

// Get godoc
// @Summary Get jurisdiction
// @Tags Jurisdictions
// @Produce json
// @Param code path string true "Jurisdiction code"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /jurisdictions/{code} [get]
func (h *JurisdictionHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create jurisdiction
// @Tags Jurisdictions
// @Accept json
// @Produce json
// @Param payload body dto.UpsertJurisdictionRequest true "Jurisdiction payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /jurisdictions [post]
func (h *JurisdictionHandler) Create(c *gin.Context) {
	var req dto.UpsertJurisdictionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Upsert(c.Request.Context(), "", req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update jurisdiction
// @Description The code in the payload may differ from the path to rename.
// @Tags Jurisdictions
// @Accept json
// @Produce json
// @Param code path string true "Jurisdiction code"
// @Param payload body dto.UpsertJurisdictionRequest true "Jurisdiction payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /jurisdictions/{code} [put]
func (h *JurisdictionHandler) Update(c *gin.Context) {
	var req dto.UpsertJurisdictionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Upsert(c.Request.Context(), c.Param("code"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Toggle godoc
// @Summary Flip the active flag
// @Tags Jurisdictions
// @Produce json
// @Param code path string true "Jurisdiction code"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /jurisdictions/{code}/toggle [post]
func (h *JurisdictionHandler) Toggle(c *gin.Context) {
	item, err := h.service.ToggleActive(c.Request.Context(), c.Param("code"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete jurisdiction
// @Description Refused with 409 while records still reference it.
// @Tags Jurisdictions
// @Param code path string true "Jurisdiction code"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /jurisdictions/{code} [delete]
func (h *JurisdictionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("code"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
