package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
	"github.com/noah-isme/privacy-admin-api/pkg/response"
)

type deadlineService interface {
	DSAR(ctx context.Context, code string, received *time.Time) (*dto.DSARDeadlineResponse, error)
	Breach(ctx context.Context, code string, detected *time.Time) (*dto.BreachDeadlineResponse, error)
}

// DeadlineHandler previews statutory deadlines without storing anything.
type DeadlineHandler struct {
	service deadlineService
}

// NewDeadlineHandler constructs a deadline handler.
func NewDeadlineHandler(svc deadlineService) *DeadlineHandler {
	return &DeadlineHandler{service: svc}
}

func jurisdictionParam(c *gin.Context) (string, error) {
	code := strings.TrimSpace(c.Query("jurisdiction"))
	if code == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "jurisdiction is required")
	}
	return code, nil
}

// DSAR godoc
// @Summary Preview a DSAR due date
// @Tags Deadlines
// @Produce json
// @Param jurisdiction query string true "Jurisdiction code"
// @Param received query string false "Received date, defaults to now"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /deadlines/dsar [get]
func (h *DeadlineHandler) DSAR(c *gin.Context) {
	code, err := jurisdictionParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	received, err := timeQuery(c, "received")
	if err != nil {
		response.Error(c, err)
		return
	}
	out, err := h.service.DSAR(c.Request.Context(), code, received)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Breach godoc
// @Summary Preview a breach notification deadline
// @Tags Deadlines
// @Produce json
// @Param jurisdiction query string true "Jurisdiction code"
// @Param detected query string false "Detection time, defaults to now"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /deadlines/breach [get]
func (h *DeadlineHandler) Breach(c *gin.Context) {
	code, err := jurisdictionParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	detected, err := timeQuery(c, "detected")
	if err != nil {
		response.Error(c, err)
		return
	}
	out, err := h.service.Breach(c.Request.Context(), code, detected)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}
