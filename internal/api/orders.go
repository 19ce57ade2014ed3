package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supplylink/core-service/internal/models"
)

// CreateOrder places a new order against a supplier
func (h *Handler) CreateOrder(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	o, err := h.orders.Create(ctx, actor, req.SupplierOrgID, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.SuccessResponse{
		Message: "Order created successfully",
		Data:    o,
	})
}

// GetOrder returns one order visible to the caller's org
func (h *Handler) GetOrder(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	o, err := h.orders.Get(ctx, actor, c.Param("order_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: "Order retrieved successfully",
		Data:    o,
	})
}

// ListOrders returns the caller's org-scoped order list
func (h *Handler) ListOrders(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	orders, err := h.orders.List(ctx, actor, models.OrderStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: "Orders retrieved successfully",
		Data:    orders,
	})
}

// UpdateOrderStatus applies a status transition to an order
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	o, err := h.orders.UpdateStatus(ctx, actor, c.Param("order_id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: "Order status updated successfully",
		Data:    o,
	})
}
