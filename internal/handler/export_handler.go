package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/internal/service"
	"github.com/noah-isme/privacy-admin-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, req service.ExportRequest, actor models.Actor) (*service.ExportResult, error)
}

// ExportHandler streams compliance registers.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Export godoc
// @Summary Download a register
// @Description Accepts the same filters as the matching list endpoint.
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param register path string true "dsars or breaches"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /exports/{register} [get]
func (h *ExportHandler) Export(c *gin.Context) {
	req := service.ExportRequest{
		Register: strings.ToLower(c.Param("register")),
		Format:   strings.ToLower(c.Query("format")),
	}
	switch req.Register {
	case service.RegisterDSARs:
		filter, err := dsarFilterFromQuery(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		req.DSAR = filter
	case service.RegisterBreaches:
		filter, err := breachFilterFromQuery(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		req.Breach = filter
	}

	result, err := h.service.Export(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, result.Filename, result.ContentType, result.Body)
}
