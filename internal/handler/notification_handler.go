package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/privacy-admin-api/internal/models"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
	"github.com/noah-isme/privacy-admin-api/pkg/response"
)

type notificationInbox interface {
	List(ctx context.Context, userID string, unreadOnly bool, page models.PageRequest) ([]models.Notification, *models.Pagination, error)
	MarkRead(ctx context.Context, id, userID string) error
}

// NotificationHandler serves the current user's notification inbox.
type NotificationHandler struct {
	service notificationInbox
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(svc notificationInbox) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary List my notifications
// @Description Includes broadcast notifications addressed to every officer.
// @Tags Notifications
// @Produce json
// @Param unread query bool false "Only unread"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	unread, err := boolQuery(c, "unread")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), claims.UserID, unread != nil && *unread, pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, pagination)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Security BearerAuth
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
