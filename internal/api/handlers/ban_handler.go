package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kestrelsec/bastion/internal/logger"
	"github.com/kestrelsec/bastion/internal/services"
)

// BanHandler administers the BannedIP table.
type BanHandler struct {
	bans     *services.BanService
	notifier *services.Notifier
}

// NewBanHandler wires the handler.
func NewBanHandler(bans *services.BanService, notifier *services.Notifier) *BanHandler {
	return &BanHandler{bans: bans, notifier: notifier}
}

type banRequest struct {
	IP              string `json:"ip" binding:"required"`
	Permanent       bool   `json:"permanent"`
	DurationMinutes int    `json:"duration_minutes"`
}

// Ban creates or refreshes a ban. Temporary bans default to 30 minutes.
func (h *BanHandler) Ban(c *gin.Context) {
	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ip required"})
		return
	}

	duration := time.Duration(req.DurationMinutes) * time.Minute
	if !req.Permanent && duration <= 0 {
		duration = 30 * time.Minute
	}

	if err := h.bans.Ban(req.IP, req.Permanent, duration); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.notifier != nil {
		if err := h.notifier.NotifyBan(req.IP, req.Permanent); err != nil {
			logger.Log().WithError(err).Warn("ban notification failed")
		}
	}
	c.JSON(http.StatusOK, gin.H{"ip": req.IP, "permanent": req.Permanent})
}

// Unban removes a ban.
func (h *BanHandler) Unban(c *gin.Context) {
	ip := c.Param("ip")
	if err := h.bans.Unban(ip); err != nil {
		if err == services.ErrBanNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "ban not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ip": ip})
}

// List returns all ban rows.
func (h *BanHandler) List(c *gin.Context) {
	rows, err := h.bans.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}
