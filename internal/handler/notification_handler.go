package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/portal-backend/internal/middleware"
	"github.com/stemsi/portal-backend/internal/response"
	"github.com/stemsi/portal-backend/internal/service"
)

// NotificationInbox is the subset of service.NotificationService used by the handlers.
type NotificationInbox interface {
	List(ctx context.Context, studentID, page, perPage int) (*service.NotificationList, *response.Pagination, error)
	MarkRead(ctx context.Context, studentID, id int) error
	Subscribe(ctx context.Context, studentID int) *redis.PubSub
}

// NotificationHandler handles the notification list.
type NotificationHandler struct {
	inbox NotificationInbox
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(inbox NotificationInbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

// ListNotifications godoc
// GET /api/v1/student/notifications?page=&per_page=
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	claims := middleware.GetClaims(c)
	page, perPage := pageQuery(c)

	list, pagination, err := h.inbox.List(c.Request.Context(), claims.UserID, page, perPage)
	if err != nil {
		failFromRepo(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, list, pagination)
}

// MarkRead godoc
// POST /api/v1/student/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	if err := h.inbox.MarkRead(c.Request.Context(), claims.UserID, id); err != nil {
		failFromRepo(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id, "read": true})
}
