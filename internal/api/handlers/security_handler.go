package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kestrelsec/bastion/internal/aegis"
	"github.com/kestrelsec/bastion/internal/detector"
	"github.com/kestrelsec/bastion/internal/guard"
	"github.com/kestrelsec/bastion/internal/services"
)

// SecurityHandler exposes the defense status, feature flags, the detection
// engine and the recent behavioral events.
type SecurityHandler struct {
	engine   *detector.Engine
	flags    *services.SettingsService
	attacks  *services.AttackLogService
	attempts *services.LoginAttemptService
	bfConfig guard.BruteForceConfig
}

// NewSecurityHandler wires the handler from its collaborators.
func NewSecurityHandler(engine *detector.Engine, flags *services.SettingsService, attacks *services.AttackLogService, attempts *services.LoginAttemptService, bfConfig guard.BruteForceConfig) *SecurityHandler {
	return &SecurityHandler{engine: engine, flags: flags, attacks: attacks, attempts: attempts, bfConfig: bfConfig}
}

type detectRequest struct {
	Content string `json:"content"`
}

// Detect runs the aggregation engine over arbitrary content and returns the
// verdict. Detection itself is side-effect-free; this endpoint does not log.
func (h *SecurityHandler) Detect(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content required"})
		return
	}
	c.JSON(http.StatusOK, h.engine.DetectAll(req.Content))
}

type passwordCheckRequest struct {
	Password string `json:"password"`
}

// CheckPassword evaluates password strength without creating anything.
func (h *SecurityHandler) CheckPassword(c *gin.Context) {
	var req passwordCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
		return
	}
	ok, reasons := guard.ValidatePassword(req.Password)
	if reasons == nil {
		reasons = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": ok, "reasons": reasons})
}

// Status reports the feature flags and live window counters for the calling
// identity.
func (h *SecurityHandler) Status(c *gin.Context) {
	ip := aegis.ClientIP(c)
	now := time.Now().UTC()

	failedTotal, err := h.attempts.RecentFailuresTotal(now.Add(-h.bfConfig.UsernameFailWindow))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	distinct, err := h.attempts.DistinctUsernames(ip, now.Add(-h.bfConfig.IPWindow))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"flags":     h.flags.Flags(),
		"client_ip": ip,
		"bruteforce": gin.H{
			"username_fail_threshold":         h.bfConfig.UsernameFailThreshold,
			"username_fail_window_seconds":    int(h.bfConfig.UsernameFailWindow.Seconds()),
			"ip_distinct_usernames_threshold": h.bfConfig.IPDistinctUsernamesThreshold,
			"ip_window_seconds":               int(h.bfConfig.IPWindow.Seconds()),
			"recent_failed_total_in_window":   failedTotal,
			"recent_distinct_usernames_for_ip": distinct,
		},
	})
}

// GetFlags returns every known feature flag.
func (h *SecurityHandler) GetFlags(c *gin.Context) {
	c.JSON(http.StatusOK, h.flags.Flags())
}

type setFlagRequest struct {
	Key     string `json:"key" binding:"required"`
	Enabled *bool  `json:"enabled" binding:"required"`
}

// SetFlag flips one feature flag. The write is visible to the next check.
func (h *SecurityHandler) SetFlag(c *gin.Context) {
	var req setFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key and enabled required"})
		return
	}
	if err := h.flags.SetFlag(req.Key, *req.Enabled); err != nil {
		if err == services.ErrUnknownFlag {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown flag"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{req.Key: *req.Enabled})
}

// RecentEvents lists the newest behavioral security events.
func (h *SecurityHandler) RecentEvents(c *gin.Context) {
	rows, err := h.attacks.Recent(50, "brute_force", "weak_password", "session_hijack")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}
