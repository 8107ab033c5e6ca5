package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kestrelsec/bastion/internal/aegis"
	"github.com/kestrelsec/bastion/internal/guard"
	"github.com/kestrelsec/bastion/internal/logger"
	"github.com/kestrelsec/bastion/internal/metrics"
	"github.com/kestrelsec/bastion/internal/services"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "bastion_session"

// ClaimsKey is the context key holding the parsed session claims.
const ClaimsKey = "sessionClaims"

// Session authenticates requests from the session cookie and runs the
// fingerprint guard on every authenticated request. A fingerprint violation
// terminates the session: the event is logged, the cookie cleared and the
// caller forced to re-authenticate.
func Session(auth *services.AuthService, fpGuard *guard.FingerprintGuard, attacks *services.AttackLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookie)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := auth.ParseToken(raw)
		if err != nil {
			clearSession(c)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		ip := aegis.ClientIP(c)
		agent := c.Request.UserAgent()
		_, violation := fpGuard.Check(&claims.Fingerprint, ip, agent)
		if violation != "" {
			metrics.IncSessionViolation()
			if logErr := attacks.Append(services.AttackLogEntry{
				IP:             ip,
				Payload:        "Blocked: " + violation,
				Blocked:        true,
				AttackType:     "session_hijack",
				AttackCategory: "behavioral",
				Severity:       "high",
				TargetURL:      c.Request.URL.Path,
				UserAgent:      agent,
			}); logErr != nil {
				logger.Log().WithError(logErr).Error("attack log append failed")
			}
			clearSession(c)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":  "session terminated",
				"reason": violation,
			})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetClaims returns the session claims set by the Session middleware.
func GetClaims(c *gin.Context) *services.SessionClaims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*services.SessionClaims); ok {
			return claims
		}
	}
	return nil
}

// RequireAdmin aborts unless the session role is admin. Must run after
// Session.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || claims.Role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func clearSession(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}
