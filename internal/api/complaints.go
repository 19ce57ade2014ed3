package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supplylink/core-service/internal/models"
)

// CreateComplaint raises a complaint against an order
func (h *Handler) CreateComplaint(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	var req models.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	cp, err := h.complaints.Create(ctx, actor, c.Param("order_id"), req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.SuccessResponse{
		Message: "Complaint created successfully",
		Data:    cp,
	})
}

// UpdateComplaint patches the status and/or assignee of a complaint
func (h *Handler) UpdateComplaint(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	var patch models.ComplaintPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	cp, err := h.complaints.Update(ctx, actor, c.Param("complaint_id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: "Complaint updated successfully",
		Data:    cp,
	})
}

// ListComplaints returns complaints visible to the caller
func (h *Handler) ListComplaints(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	complaints, err := h.complaints.List(ctx, actor, models.ComplaintStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: "Complaints retrieved successfully",
		Data:    complaints,
	})
}
