// Package aegis is the request-admission facade: it checks bans, applies the
// rate limiter and runs the detection engine against inbound payloads before
// the route handlers see them.
package aegis

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kestrelsec/bastion/internal/detector"
	"github.com/kestrelsec/bastion/internal/guard"
	"github.com/kestrelsec/bastion/internal/logger"
	"github.com/kestrelsec/bastion/internal/metrics"
	"github.com/kestrelsec/bastion/internal/services"
)

// maxInspectedBody bounds how much of a request body the middleware reads
// for inspection.
const maxInspectedBody = 64 * 1024

// DetectionLoggedKey marks a request whose attack payload the detection
// middleware already wrote to the attack log. Handlers that self-report
// unblocked attacks check it to keep the trail at one entry per request.
const DetectionLoggedKey = "aegisDetectionLogged"

// Aegis owns the shared defense collaborators used by the middleware chain.
type Aegis struct {
	engine   *detector.Engine
	limiter  *guard.RateLimiter
	flags    *services.SettingsService
	bans     *services.BanService
	attacks  *services.AttackLogService
	notifier *services.Notifier
}

// New wires the facade from its collaborators.
func New(engine *detector.Engine, limiter *guard.RateLimiter, flags *services.SettingsService, bans *services.BanService, attacks *services.AttackLogService, notifier *services.Notifier) *Aegis {
	return &Aegis{engine: engine, limiter: limiter, flags: flags, bans: bans, attacks: attacks, notifier: notifier}
}

// Engine exposes the detection engine to handlers that inspect their own
// payloads.
func (a *Aegis) Engine() *detector.Engine { return a.engine }

// AdmissionMiddleware rejects banned identities and flags rate-limit
// overflows. It runs before any route handler, including login.
func (a *Aegis) AdmissionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ClientIP(c)

		banned, err := a.bans.IsBanned(ip)
		if err != nil {
			logger.WithFields(map[string]interface{}{"ip": ip}).WithError(err).Error("ban lookup failed")
		} else if banned {
			metrics.IncBlocked()
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "IP blocked"})
			return
		}

		res, err := a.limiter.Check(ip, c.Request.URL.Path)
		if err != nil {
			logger.WithFields(map[string]interface{}{"ip": ip}).WithError(err).Error("rate limit check failed")
		} else if res.OverLimit {
			metrics.IncRateLimitOverflow()
			attackType := "dos"
			if res.Bucket == guard.BucketLogin {
				attackType = "brute_force"
			}
			if logErr := a.attacks.Append(services.AttackLogEntry{
				IP:             ip,
				Payload:        "rate limit exceeded: " + res.Bucket,
				Blocked:        true,
				AttackType:     attackType,
				AttackCategory: "behavioral",
				Severity:       severityForBucket(res.Bucket),
				TargetURL:      c.Request.URL.Path,
				UserAgent:      c.Request.UserAgent(),
			}); logErr != nil {
				logger.Log().WithError(logErr).Error("attack log append failed")
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":  "rate limit exceeded",
				"bucket": res.Bucket,
				"count":  res.Count,
			})
			return
		}

		c.Next()
	}
}

// DetectionMiddleware inspects JSON bodies and query strings with the
// detection engine and blocks on a verdict when defense is enabled. With
// defense off it still logs what it saw, unblocked, so the range can show
// the difference.
func (a *Aegis) DetectionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		content := inspectableContent(c)
		if content == "" {
			c.Next()
			return
		}

		verdict := a.engine.DetectAll(content)
		if !verdict.Detected {
			c.Next()
			return
		}

		ip := ClientIP(c)
		blocked := a.flags.DefenseEnabled()
		c.Set(DetectionLoggedKey, true)
		for _, m := range verdict.Matches {
			metrics.IncDetection(string(m.Type))
			if err := a.attacks.Append(services.AttackLogEntry{
				IP:             ip,
				Payload:        content,
				Blocked:        blocked,
				AttackType:     string(m.Type),
				AttackCategory: m.Category,
				Severity:       m.Severity,
				TargetURL:      c.Request.URL.Path,
				UserAgent:      c.Request.UserAgent(),
			}); err != nil {
				logger.Log().WithError(err).Error("attack log append failed")
			}
			if m.Severity == "critical" && a.notifier != nil {
				if err := a.notifier.NotifyCriticalAttack(ip, string(m.Type), m.Description); err != nil {
					logger.Log().WithError(err).Warn("attack notification failed")
				}
			}
		}

		if blocked {
			metrics.IncBlocked()
			logger.WithFields(map[string]interface{}{
				"ip":     ip,
				"path":   c.Request.URL.Path,
				"types":  verdict.Matches[0].Type,
				"blocks": len(verdict.Matches),
			}).Warn("attack payload blocked")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "attack detected and blocked",
				"verdict": verdict,
			})
			return
		}

		c.Next()
	}
}

func severityForBucket(bucket string) string {
	switch bucket {
	case guard.BucketLogin:
		return "high"
	case guard.BucketAPI:
		return "medium"
	default:
		return "low"
	}
}

// inspectableContent collects the parts of the request the engine looks at:
// the query string in both raw and decoded form, and, for JSON posts, the
// body. The raw form keeps the URL-encoded traversal signatures reachable;
// the decoded form is what the target endpoint would actually consume. The
// body is restored so handlers can still bind it.
func inspectableContent(c *gin.Context) string {
	var parts []string
	if q := c.Request.URL.RawQuery; q != "" {
		parts = append(parts, q)
		if dec, err := url.QueryUnescape(q); err == nil && dec != q {
			parts = append(parts, dec)
		}
	}

	if c.Request.Body != nil && strings.HasPrefix(c.ContentType(), "application/json") {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxInspectedBody))
		if err == nil && len(body) > 0 {
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
			parts = append(parts, string(body))
		}
	}

	return strings.Join(parts, "\n")
}

// ClientIP resolves the request identity: first X-Forwarded-For hop when
// present, else the connection peer. IPv6 loopback is normalized to its IPv4
// form so loopback identities compare equal across stacks.
func ClientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "::1" {
		return "127.0.0.1"
	}
	return ip
}
