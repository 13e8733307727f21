package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inaciosamuel465/estateflow/internal/api/handlers"
	"github.com/inaciosamuel465/estateflow/internal/models"
)

func TestListNotificationsReportsUnreadCount(t *testing.T) {
	controller := newTestController()
	controller.Store().SetNotifications([]models.Notification{
		{Base: models.Base{ID: "n1"}, Read: true},
		{Base: models.Base{ID: "n2"}},
	})
	h := handlers.NewNotificationHandler(controller)
	r := gin.New()
	r.GET("/notifications", h.ListNotifications)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Notifications []models.Notification `json:"notifications"`
		Unread        int                   `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Notifications, 2)
	assert.Equal(t, 1, resp.Unread)
}

func TestClearNotificationsRequiresConfirmation(t *testing.T) {
	controller := newTestController()
	controller.Store().SetNotifications([]models.Notification{{Base: models.Base{ID: "n1"}}})
	h := handlers.NewNotificationHandler(controller)
	r := gin.New()
	r.DELETE("/notifications", h.Clear)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/notifications", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, controller.Store().Notifications(), 1, "unconfirmed clear must not touch the store")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/notifications?confirm=true", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, controller.Store().Notifications())
}

func TestMarkNotificationReadUnknownID(t *testing.T) {
	h := handlers.NewNotificationHandler(newTestController())
	r := gin.New()
	r.POST("/notifications/:id/read", h.MarkRead)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/notifications/nope/read", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
