package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/supplylink/core-service/internal/complaint"
	"github.com/supplylink/core-service/internal/link"
	"github.com/supplylink/core-service/internal/messaging"
	"github.com/supplylink/core-service/internal/models"
	"github.com/supplylink/core-service/internal/order"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler holds the domain services and provides HTTP handlers
type Handler struct {
	links      *link.Service
	orders     *order.Service
	complaints *complaint.Service
	messages   *messaging.Service
	health     HealthChecker
}

// NewHandler creates a new handler instance
func NewHandler(links *link.Service, orders *order.Service, complaints *complaint.Service, messages *messaging.Service, health HealthChecker) *Handler {
	return &Handler{
		links:      links,
		orders:     orders,
		complaints: complaints,
		messages:   messages,
		health:     health,
	}
}

// Health checks the health of the service
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.health.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "Store connection failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "core-service",
		"timestamp": time.Now().UTC(),
	})
}

// requestContext returns a bounded context for one request's work
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// principal extracts the authenticated principal or writes a 401
func principal(c *gin.Context) (models.Principal, bool) {
	p, ok := GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "Invalid user",
			Message: "Could not extract identity from token",
		})
	}
	return p, ok
}
