package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kestrelsec/bastion/internal/aegis"
	"github.com/kestrelsec/bastion/internal/api/middleware"
	"github.com/kestrelsec/bastion/internal/guard"
	"github.com/kestrelsec/bastion/internal/logger"
	"github.com/kestrelsec/bastion/internal/metrics"
	"github.com/kestrelsec/bastion/internal/models"
	"github.com/kestrelsec/bastion/internal/services"
)

// AuthHandler implements login, logout and registration. The brute-force
// guard runs before credential verification; a successful login binds the
// session fingerprint into the issued token.
type AuthHandler struct {
	db         *gorm.DB
	auth       *services.AuthService
	bruteforce *guard.BruteForce
	fpGuard    *guard.FingerprintGuard
	flags      *services.SettingsService
	attacks    *services.AttackLogService
}

// NewAuthHandler wires the handler from its collaborators.
func NewAuthHandler(db *gorm.DB, auth *services.AuthService, bruteforce *guard.BruteForce, fpGuard *guard.FingerprintGuard, flags *services.SettingsService, attacks *services.AttackLogService) *AuthHandler {
	return &AuthHandler{db: db, auth: auth, bruteforce: bruteforce, fpGuard: fpGuard, flags: flags, attacks: attacks}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a user. Order matters: the brute-force check runs
// first; attempts it blocks never reach credential verification and are not
// recorded as login attempts, only as security log entries.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	ip := aegis.ClientIP(c)
	agent := c.Request.UserAgent()

	decision, err := h.bruteforce.CheckAllowed(ip, req.Username)
	if err != nil {
		logger.Log().WithError(err).Error("brute-force check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if !decision.Allowed {
		metrics.IncBruteforceDenied()
		if logErr := h.attacks.Append(services.AttackLogEntry{
			IP:             ip,
			Payload:        "Blocked: " + decision.Reason + " username=" + guard.Truncate(req.Username, 80),
			Blocked:        true,
			AttackType:     "brute_force",
			AttackCategory: "behavioral",
			Severity:       "high",
			TargetURL:      c.Request.URL.Path,
			UserAgent:      agent,
		}); logErr != nil {
			logger.Log().WithError(logErr).Error("attack log append failed")
		}
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       decision.Reason,
			"retry_after": decision.RetryAfter,
		})
		return
	}

	var user models.User
	findErr := h.db.Where("username = ?", req.Username).First(&user).Error
	success := findErr == nil && user.CheckPassword(req.Password)

	if err := h.bruteforce.Record(ip, req.Username, success, agent); err != nil {
		logger.Log().WithError(err).Error("record login attempt failed")
	}

	if !success {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	fp := h.fpGuard.Bind(ip, agent)
	token, err := h.auth.IssueToken(user.Username, user.Role, fp)
	if err != nil {
		logger.Log().WithError(err).Error("issue session token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	if err := h.db.Save(&user).Error; err != nil {
		logger.Log().WithError(err).Warn("update last login failed")
	}

	c.SetCookie(middleware.SessionCookie, token, int(12*time.Hour/time.Second), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"username": user.Username, "role": user.Role})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a user account. The password strength gate applies when
// the defense and weak-password flags are on; rejections are logged as
// weak_password events.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	ip := aegis.ClientIP(c)
	if h.flags.DefenseEnabled() && h.flags.WeakPasswordEnabled() {
		if ok, reasons := guard.ValidatePassword(req.Password); !ok {
			if logErr := h.attacks.Append(services.AttackLogEntry{
				IP:             ip,
				Payload:        "Weak password blocked context=register",
				Blocked:        true,
				AttackType:     "weak_password",
				AttackCategory: "behavioral",
				Severity:       "medium",
				TargetURL:      c.Request.URL.Path,
				UserAgent:      c.Request.UserAgent(),
			}); logErr != nil {
				logger.Log().WithError(logErr).Error("attack log append failed")
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "weak password", "reasons": reasons})
			return
		}
	}

	user := models.User{Username: guard.Truncate(req.Username, 80), Role: "user"}
	if err := user.SetPassword(req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"username": user.Username})
}

// Me returns the authenticated identity.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": claims.Username, "role": claims.Role})
}
