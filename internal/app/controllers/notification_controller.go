package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/internflow/internal/app/models/dto"
	"github.com/yigit/internflow/internal/app/services"
	"github.com/yigit/internflow/internal/middleware"
)

// NotificationController serves the in-app inbox
type NotificationController struct {
	notificationService services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// ListNotifications godoc
// @Summary Inbox of the caller
// @Tags notifications
// @Produce json
// @Security ApiKeyAuth
// @Param unread query bool false "Only unread notifications"
// @Param limit query int false "Page size (default: 50)"
// @Success 200 {object} dto.APIResponse{data=dto.NotificationListResponse}
// @Router /notifications [get]
func (c *NotificationController) ListNotifications(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}

	var req dto.ListNotificationsRequest
	if !bindQuery(ctx, &req) {
		return
	}

	items, err := c.notificationService.ListNotifications(ctx.Request.Context(), userID, req.UnreadOnly, req.Limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NotificationListResponse{Notifications: items}))
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageData}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /notifications/{id}/read [put]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := requireID(ctx, "id", "notification")
	if !ok {
		return
	}

	if err := c.notificationService.MarkRead(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageData{Message: "Notification marked as read"}))
}
