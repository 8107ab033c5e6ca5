package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kestrelsec/bastion/internal/services"
)

// LogsHandler exposes the attack log.
type LogsHandler struct {
	attacks *services.AttackLogService
}

// NewLogsHandler wires the handler.
func NewLogsHandler(attacks *services.AttackLogService) *LogsHandler {
	return &LogsHandler{attacks: attacks}
}

// List returns the newest attack log rows, optionally filtered by type.
func (h *LogsHandler) List(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	var types []string
	if t := c.Query("type"); t != "" {
		types = append(types, t)
	}

	rows, err := h.attacks.Recent(limit, types...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Stats returns aggregate attack log counters.
func (h *LogsHandler) Stats(c *gin.Context) {
	stats, err := h.attacks.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
