package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/AlexFame/bazaar-sub001/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	base
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{base: base{log: log}, svc: svc}
}

type NotificationResponse struct {
	ID        uint64 `json:"id"`
	Category  string `json:"category"`
	Body      string `json:"body"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Category:  n.Category,
		Body:      n.Body,
		Read:      n.ReadAt != nil,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	unreadOnly := c.QueryParam("unread_only") != "false"
	limit := 20
	if lStr := c.QueryParam("limit"); lStr != "" {
		if lParsed, err := strconv.Atoi(lStr); err == nil && lParsed > 0 {
			limit = lParsed
		}
	}
	list, unreadCount, err := h.svc.List(c.Request().Context(), acc.ID, unreadOnly, limit)
	if err != nil {
		return h.serviceError(c, err, "failed to fetch notifications")
	}
	resp := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, toNotificationResponse(n))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":       resp,
		"unreadCount": unreadCount,
	})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.svc.MarkAllRead(c.Request().Context(), acc.ID); err != nil {
		return h.serviceError(c, err, "failed to mark notifications read")
	}
	return c.NoContent(http.StatusNoContent)
}
