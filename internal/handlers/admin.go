package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stats handles GET /api/admin/stats
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.recorder.Stats())
}

// RecentLogs handles GET /api/admin/logs
func (h *Handlers) RecentLogs(c *gin.Context) {
	entries := h.recorder.Recent(queryInt(c, "limit", 100))
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

// SessionLogs handles GET /api/admin/logs/sessions/:id
func (h *Handlers) SessionLogs(c *gin.Context) {
	entries, err := h.recorder.SessionLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": c.Param("id"),
		"entries":    entries,
		"count":      len(entries),
	})
}

// ExportLogs handles GET /api/admin/logs/export
func (h *Handlers) ExportLogs(c *gin.Context) {
	data, err := h.recorder.Export()
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=chat-logs.json")
	c.Data(http.StatusOK, "application/json", data)
}

// ClearLogs handles DELETE /api/admin/logs
func (h *Handlers) ClearLogs(c *gin.Context) {
	h.recorder.Clear()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
