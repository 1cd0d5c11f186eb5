package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_storefront/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency whose reachability the health endpoint reports.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ClientCounter reports how many live event streams are open.
type ClientCounter interface {
	ClientCount() int
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	bakery Pinger
	redis  Pinger
	events ClientCounter
}

// NewHealthHandler creates a new HealthHandler. redis may be nil when carts
// and the catalog cache run without Redis.
func NewHealthHandler(bakery Pinger, redis Pinger, events ClientCounter) *HealthHandler {
	return &HealthHandler{bakery: bakery, redis: redis, events: events}
}

// GetHealth responds with service, bakery API and Redis status plus the
// number of open SSE streams.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := "healthy"
	bakeryStatus := "connected"
	if err := h.bakery.Ping(ctx); err != nil {
		bakeryStatus = "disconnected"
		status = "degraded"
	}

	redisStatus := "disabled"
	if h.redis != nil {
		redisStatus = "connected"
		if err := h.redis.Ping(ctx); err != nil {
			redisStatus = "disconnected"
			status = "degraded"
		}
	}

	clients := 0
	if h.events != nil {
		clients = h.events.ClientCount()
	}

	utils.Success(c, http.StatusOK, "Service is "+status, gin.H{
		"status":  status,
		"version": "1.0.0",
		"uptime":  int(time.Since(startTime).Seconds()),
		"bakeryApi": gin.H{
			"status": bakeryStatus,
		},
		"redis": gin.H{
			"status": redisStatus,
		},
		"sse": gin.H{
			"clients": clients,
		},
	})
}
