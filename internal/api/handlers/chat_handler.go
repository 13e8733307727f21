package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inaciosamuel465/estateflow/internal/api/middleware"
	"github.com/inaciosamuel465/estateflow/internal/models"
	"github.com/inaciosamuel465/estateflow/internal/state"
)

// ChatHandler handles the enquiry chat: public message sending and the
// admin-side conversation list.
type ChatHandler struct {
	controller *state.Controller
}

func NewChatHandler(controller *state.Controller) *ChatHandler {
	return &ChatHandler{controller: controller}
}

type sendMessageRequest struct {
	Text     string `json:"text" binding:"required"`
	UserName string `json:"user_name"`
}

// SendMessage handles POST /v1/chat/messages. Anonymous visitors land in the
// shared anonymous conversation; signed-in users get their own thread keyed
// by user id.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.UserID(c)
	sender := models.SenderUser
	if middleware.UserRole(c) == models.RoleAdmin {
		sender = models.SenderAgent
	}

	msg, err := h.controller.SendMessage(c.Request.Context(), userID, req.Text, sender, models.ConversationMeta{
		UserName: req.UserName,
		UserRole: models.RoleClient,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "message accepted locally, persistence failed", "message": msg})
		return
	}
	c.JSON(http.StatusCreated, msg)
}

type agentReplyRequest struct {
	Text string `json:"text" binding:"required"`
}

// Reply handles POST /v1/admin/chat/conversations/:id/messages, the agent
// side of a thread.
func (h *ChatHandler) Reply(c *gin.Context) {
	var req agentReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.controller.SendMessage(c.Request.Context(), c.Param("id"), req.Text, models.SenderAgent, models.ConversationMeta{})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "message accepted locally, persistence failed", "message": msg})
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// MyConversation handles GET /v1/chat/conversation, the caller's own thread.
// Anonymous visitors read the shared anonymous conversation. An empty thread
// returns 200 with no messages so the client can render a fresh chat.
func (h *ChatHandler) MyConversation(c *gin.Context) {
	convID := h.controller.ConversationIDFor(middleware.UserID(c))
	conv, ok := h.controller.Store().ConversationByID(convID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"id": convID, "messages": []models.ChatMessage{}})
		return
	}
	c.JSON(http.StatusOK, conv)
}

// ListConversations handles GET /v1/admin/chat/conversations.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"conversations": h.controller.Store().Conversations()})
}

// GetConversation handles GET /v1/admin/chat/conversations/:id.
func (h *ChatHandler) GetConversation(c *gin.Context) {
	conv, ok := h.controller.Store().ConversationByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}
	c.JSON(http.StatusOK, conv)
}

// MarkRead handles POST /v1/admin/chat/conversations/:id/read.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	if err := h.controller.MarkConversationRead(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "read mark accepted locally, persistence failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
