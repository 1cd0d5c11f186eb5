package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_storefront/internal/middleware"
	"github.com/GTDGit/bakery_storefront/internal/service"
	"github.com/GTDGit/bakery_storefront/internal/sse"
	"github.com/GTDGit/bakery_storefront/internal/utils"
)

// SSEHandler streams live cart and order events.
type SSEHandler struct {
	hub       *sse.Hub
	carts     *service.CartService
	jwtSecret string
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(hub *sse.Hub, carts *service.CartService, jwtSecret string) *SSEHandler {
	return &SSEHandler{hub: hub, carts: carts, jwtSecret: jwtSecret}
}

// CartStream handles GET /v1/cart/events
// The current cart is sent first, then every change of it.
func (h *SSEHandler) CartStream(c *gin.Context) {
	session := middleware.GetCartSession(c)
	snap, err := h.carts.Get(c.Request.Context(), session)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	clientID := fmt.Sprintf("cart-%s-%d", session, time.Now().UnixNano())
	client := h.hub.Register(clientID, sse.CartTopic(session))
	defer h.hub.Unregister(clientID)

	setSSEHeaders(c)
	c.SSEvent(string(sse.EventCartUpdated), &sse.Event{Event: sse.EventCartUpdated, Data: snap, Timestamp: time.Now()})
	c.Writer.Flush()

	log.Debug().Str("client_id", clientID).Msg("Cart SSE stream started")
	h.stream(c, client, sse.EventCartUpdated)
}

// AdminStream handles GET /v1/admin/sse?token=<jwt>
// EventSource API cannot set custom headers, so JWT is passed via query param.
func (h *SSEHandler) AdminStream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing token query parameter")
		return
	}

	claims, err := utils.ValidateJWT(h.jwtSecret, token)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	clientID := fmt.Sprintf("admin-%s-%d", claims.Email, time.Now().UnixNano())
	client := h.hub.Register(clientID, sse.TopicAdmin)
	defer h.hub.Unregister(clientID)

	setSSEHeaders(c)
	c.SSEvent("connected", gin.H{
		"clientId":  clientID,
		"message":   "SSE connection established",
		"timestamp": time.Now().Format(time.RFC3339),
	})
	c.Writer.Flush()

	log.Info().Str("client_id", clientID).Str("admin", claims.Email).Msg("Admin SSE stream started")
	h.stream(c, client, sse.EventOrderCreated)
}

func setSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering
}

func (h *SSEHandler) stream(c *gin.Context, client *sse.Client, event sse.EventType) {
	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent(string(event), string(data))
			return true
		case <-ping.C:
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
