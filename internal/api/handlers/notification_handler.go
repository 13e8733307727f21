package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inaciosamuel465/estateflow/internal/state"
)

// NotificationHandler handles the admin notification feed.
type NotificationHandler struct {
	controller *state.Controller
}

func NewNotificationHandler(controller *state.Controller) *NotificationHandler {
	return &NotificationHandler{controller: controller}
}

// ListNotifications handles GET /v1/admin/notifications.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	store := h.controller.Store()
	c.JSON(http.StatusOK, gin.H{
		"notifications": store.Notifications(),
		"unread":        store.UnreadNotificationCount(),
	})
}

// MarkRead handles POST /v1/admin/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.controller.MarkNotificationRead(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "read mark accepted locally, persistence failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MarkAllRead handles POST /v1/admin/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.controller.MarkAllNotificationsRead(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "read mark accepted locally, persistence failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Clear handles DELETE /v1/admin/notifications. Destructive, so the caller
// must confirm explicitly.
func (h *NotificationHandler) Clear(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pass confirm=true to clear all notifications"})
		return
	}
	if err := h.controller.ClearNotifications(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "clear accepted locally, persistence failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
