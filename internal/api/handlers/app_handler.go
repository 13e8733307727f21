package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inaciosamuel465/estateflow/internal/realtime"
	"github.com/inaciosamuel465/estateflow/internal/state"
)

// AppHandler serves the bootstrap payload the SPA loads on startup and the
// live event stream.
type AppHandler struct {
	controller *state.Controller
	hub        *realtime.Hub
}

func NewAppHandler(controller *state.Controller, hub *realtime.Hub) *AppHandler {
	return &AppHandler{controller: controller, hub: hub}
}

// Bootstrap handles GET /v1/bootstrap. The shared-link query parameters are
// forwarded as-is, so a deep link resolves in the same round trip that loads
// the catalogue. An unknown or missing id falls through to a nil deep link.
func (h *AppHandler) Bootstrap(c *gin.Context) {
	store := h.controller.Store()
	link := h.controller.ResolveDeepLink(c.Request.URL.Query())

	resp := gin.H{
		"properties": store.Properties(),
	}
	if link.Kind != "" {
		resp["deep_link"] = link
	}
	c.JSON(http.StatusOK, resp)
}

// Stream handles GET /v1/admin/stream: a server-sent-events feed of
// collection snapshots. The optional topics parameter narrows the
// subscription, defaulting to everything.
func (h *AppHandler) Stream(c *gin.Context) {
	topics := []string{
		realtime.TopicProperties,
		realtime.TopicContracts,
		realtime.TopicUsers,
		realtime.TopicConversations,
		realtime.TopicNotifications,
	}
	if raw := c.Query("topics"); raw != "" {
		topics = nil
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}

	merged := make(chan realtime.Event, 32)
	done := c.Request.Context().Done()
	for _, topic := range topics {
		ch, unsubscribe := h.hub.Subscribe(topic)
		defer unsubscribe()
		go func() {
			for ev := range ch {
				select {
				case merged <- ev:
				case <-done:
					return
				}
			}
		}()
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case ev := <-merged:
			c.SSEvent(ev.Topic, string(ev.Payload))
			return true
		}
	})
}

// Ping handles GET /v1/ping.
func (h *AppHandler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
