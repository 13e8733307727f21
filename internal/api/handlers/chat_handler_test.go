package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inaciosamuel465/estateflow/internal/api/handlers"
	"github.com/inaciosamuel465/estateflow/internal/api/middleware"
	"github.com/inaciosamuel465/estateflow/internal/models"
)

func TestSendMessageAnonymousVisitor(t *testing.T) {
	controller := newTestController()
	h := handlers.NewChatHandler(controller)
	r := gin.New()
	r.POST("/chat/messages", h.SendMessage)

	body := `{"text":"Is the flat still available?"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var msg models.ChatMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, models.SenderUser, msg.Sender)
	assert.False(t, msg.Read)

	conv, ok := controller.Store().ConversationByID("anonymous")
	require.True(t, ok)
	assert.Equal(t, 1, conv.UnreadCount)

	notifs := controller.Store().Notifications()
	require.Len(t, notifs, 1, "a visitor message raises a lead notification")
	assert.Equal(t, models.NotificationLead, notifs[0].Type)
}

func TestSendMessageSignedInUserGetsOwnThread(t *testing.T) {
	controller := newTestController()
	controller.Store().SetUsers([]models.User{
		{Base: models.Base{ID: "u7"}, Name: "Carla", Role: models.RoleClient},
	})
	h := handlers.NewChatHandler(controller)
	r := gin.New()
	r.POST("/chat/messages", func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, "u7")
		c.Set(middleware.ContextKeyRole, models.RoleClient)
		h.SendMessage(c)
	})

	body := `{"text":"hello"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	conv, ok := controller.Store().ConversationByID("u7")
	require.True(t, ok)
	assert.Equal(t, "Carla", conv.UserName, "metadata comes from the known user record")
}

func TestAgentReplyMarksNoLead(t *testing.T) {
	controller := newTestController()
	h := handlers.NewChatHandler(controller)
	r := gin.New()
	r.POST("/chat/conversations/:id/messages", h.Reply)

	body := `{"text":"Yes, come by tomorrow."}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/conversations/u7/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var msg models.ChatMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.True(t, msg.Read, "agent messages are born read")
	assert.Empty(t, controller.Store().Notifications())
}

func TestMarkConversationRead(t *testing.T) {
	controller := newTestController()
	h := handlers.NewChatHandler(controller)
	r := gin.New()
	r.POST("/chat/messages", h.SendMessage)
	r.POST("/chat/conversations/:id/read", h.MarkRead)

	body := `{"text":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/chat/conversations/anonymous/read", nil))
	require.Equal(t, http.StatusOK, w.Code)

	conv, _ := controller.Store().ConversationByID("anonymous")
	assert.Equal(t, 0, conv.UnreadCount)
}

func TestMyConversationEmptyThread(t *testing.T) {
	controller := newTestController()
	h := handlers.NewChatHandler(controller)
	r := gin.New()
	r.GET("/chat/conversation", h.MyConversation)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat/conversation", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		ID       string               `json:"id"`
		Messages []models.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "anonymous", body.ID)
	assert.Empty(t, body.Messages)
}

func TestMyConversationReturnsOwnThread(t *testing.T) {
	controller := newTestController()
	h := handlers.NewChatHandler(controller)
	r := gin.New()
	r.POST("/chat/messages", func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, "u7")
		h.SendMessage(c)
	})
	r.GET("/chat/conversation", func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, "u7")
		h.MyConversation(c)
	})

	body := `{"text":"hello"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat/conversation", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var conv models.Conversation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conv))
	assert.Equal(t, "u7", conv.ID)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "hello", conv.Messages[0].Text)
}
