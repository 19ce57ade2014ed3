package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supplylink/core-service/internal/models"
)

// PostMessage appends a message to a link's thread
func (h *Handler) PostMessage(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	var req models.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	m, err := h.messages.Post(ctx, actor, c.Param("link_id"), req.Content, req.AttachmentURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.SuccessResponse{
		Message: "Message posted successfully",
		Data:    m,
	})
}

// ListMessages returns a page of a link's thread, oldest first
func (h *Handler) ListMessages(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	var page models.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid pagination",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	messages, err := h.messages.List(ctx, actor, c.Param("link_id"), page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: "Messages retrieved successfully",
		Data:    messages,
	})
}
