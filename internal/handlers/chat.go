package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cvety-kz/cvety-chat-service/internal/engine"
	"github.com/cvety-kz/cvety-chat-service/internal/logging"
)

type postMessageRequest struct {
	Message string `json:"message"`
}

type postActionRequest struct {
	Action string `json:"action"`
}

// PostMessage handles POST /api/sessions/:id/messages
func (h *Handlers) PostMessage(c *gin.Context) {
	sessionID := c.Param("id")

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind request", logging.Fields{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	msg, err := h.engine.Turn(c.Request.Context(), sessionID, req.Message)
	if err != nil {
		handleError(c, err)
		return
	}

	status := h.engine.APIStatus()
	if err := h.publisher.PublishTurnCompleted(c.Request.Context(), sessionID, msg.Cached, status == engine.StatusOffline); err != nil {
		h.logger.Warn("Failed to publish turn event", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    msg,
		"api_status": status,
		"typing":     engine.TypingPlaceholder,
	})
}

// GetMessages handles GET /api/sessions/:id/messages
func (h *Handlers) GetMessages(c *gin.Context) {
	sessionID := c.Param("id")

	c.JSON(http.StatusOK, gin.H{
		"messages":   h.engine.History(sessionID),
		"api_status": h.engine.APIStatus(),
	})
}

// PostAction handles POST /api/sessions/:id/actions
func (h *Handlers) PostAction(c *gin.Context) {
	sessionID := c.Param("id")

	var req postActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	msg, err := h.engine.QuickAction(c.Request.Context(), sessionID, req.Action)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}
