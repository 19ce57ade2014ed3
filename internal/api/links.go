package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supplylink/core-service/internal/link"
	"github.com/supplylink/core-service/internal/models"
)

// ListSuppliers returns the active supplier directory
func (h *Handler) ListSuppliers(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	suppliers, err := h.links.ListSuppliers(ctx, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: "Suppliers retrieved successfully",
		Data:    suppliers,
	})
}

// RequestLink creates a PENDING link to a supplier
func (h *Handler) RequestLink(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	var req models.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	l, err := h.links.Request(ctx, actor, req.SupplierOrgID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.SuccessResponse{
		Message: "Link requested successfully",
		Data:    l,
	})
}

// ApproveLink approves a pending link
func (h *Handler) ApproveLink(c *gin.Context) {
	h.decideLink(c, link.DecisionApprove, "Link approved successfully")
}

// DeclineLink declines a pending link
func (h *Handler) DeclineLink(c *gin.Context) {
	h.decideLink(c, link.DecisionDecline, "Link declined successfully")
}

func (h *Handler) decideLink(c *gin.Context, decision link.Decision, message string) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	l, err := h.links.Decide(ctx, actor, c.Param("link_id"), decision)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: message,
		Data:    l,
	})
}

// Unlink removes an approved link
func (h *Handler) Unlink(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	l, err := h.links.Unlink(ctx, actor, c.Param("link_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: "Link removed successfully",
		Data:    l,
	})
}

// ListLinks returns all links touching the caller's org
func (h *Handler) ListLinks(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	links, err := h.links.ListForOrg(ctx, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: "Links retrieved successfully",
		Data:    links,
	})
}

// ListPendingLinks returns pending requests for a supplier org
func (h *Handler) ListPendingLinks(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	links, err := h.links.ListPending(ctx, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: "Pending links retrieved successfully",
		Data:    links,
	})
}
