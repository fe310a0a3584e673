package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bienestar-u/eventos-api/internal/api/handler/v1/response"
	"github.com/bienestar-u/eventos-api/internal/domain"
	"github.com/bienestar-u/eventos-api/internal/service"
)

type NotificationService interface {
	ListForUser(ctx context.Context, userID uint) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID uint) (domain.Notification, error)
	Delete(ctx context.Context, id, userID uint) (bool, error)
}

type NotificationHandler struct {
	svc NotificationService
}

func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{
		svc: svc,
	}
}

// HandleGetNotifications godoc
// @Summary      List the caller's notifications, newest first
// @Tags         notifications
// @Produce      json
// @Success      200  {array}   domain.Notification
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /notifications [get]
func (h *NotificationHandler) HandleGetNotifications(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized("missing user identity"))

		return
	}

	notifications, err := h.svc.ListForUser(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetNotifications -> h.svc.ListForUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, notifications)
}

// HandleMarkNotificationRead godoc
// @Summary      Mark one of the caller's notifications as read
// @Tags         notifications
// @Produce      json
// @Param        notificationID  path  int  true  "notification ID"
// @Success      200  {object}  domain.Notification
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /notifications/{notificationID}/read [put]
func (h *NotificationHandler) HandleMarkNotificationRead(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized("missing user identity"))

		return
	}

	notificationID, err := parseIDParam(ctx, "notificationID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	notification, err := h.svc.MarkRead(ctx.Request.Context(), notificationID, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("notification", "ID", notificationID))

			return
		}

		err = fmt.Errorf("v1.HandleMarkNotificationRead -> h.svc.MarkRead -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, notification)
}

// HandleDeleteNotification godoc
// @Summary      Delete one of the caller's notifications
// @Tags         notifications
// @Produce      json
// @Param        notificationID  path  int  true  "notification ID"
// @Success      200  {object}  response.DeleteNotificationResponse
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /notifications/{notificationID} [delete]
func (h *NotificationHandler) HandleDeleteNotification(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized("missing user identity"))

		return
	}

	notificationID, err := parseIDParam(ctx, "notificationID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	deleted, err := h.svc.Delete(ctx.Request.Context(), notificationID, userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleDeleteNotification -> h.svc.Delete -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.DeleteNotificationResponse{Success: deleted})
}
