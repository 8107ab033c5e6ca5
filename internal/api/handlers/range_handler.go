package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kestrelsec/bastion/internal/aegis"
	"github.com/kestrelsec/bastion/internal/detector"
	"github.com/kestrelsec/bastion/internal/logger"
	"github.com/kestrelsec/bastion/internal/models"
	"github.com/kestrelsec/bastion/internal/services"
)

// RangeHandler serves the simulated attack targets. When the defense flag is
// on, attack payloads never reach these handlers (the detection middleware
// blocks them); when it is off, the attack is logged unblocked and the
// handlers replay its effect against the simulated data so the range can
// demonstrate impact.
type RangeHandler struct {
	db      *gorm.DB
	engine  *detector.Engine
	flags   *services.SettingsService
	attacks *services.AttackLogService
}

// NewRangeHandler wires the handler.
func NewRangeHandler(db *gorm.DB, engine *detector.Engine, flags *services.SettingsService, attacks *services.AttackLogService) *RangeHandler {
	return &RangeHandler{db: db, engine: engine, flags: flags, attacks: attacks}
}

// logUnblocked records an attack that was allowed through because defense is
// off. When the detection middleware already logged this request the handler
// stays silent so the trail holds one entry per request.
func (h *RangeHandler) logUnblocked(c *gin.Context, payload string, m detector.Match) {
	if c.GetBool(aegis.DetectionLoggedKey) {
		return
	}
	if err := h.attacks.Append(services.AttackLogEntry{
		IP:             aegis.ClientIP(c),
		Payload:        payload,
		Blocked:        false,
		AttackType:     string(m.Type),
		AttackCategory: m.Category,
		Severity:       m.Severity,
		TargetURL:      c.Request.URL.Path,
		UserAgent:      c.Request.UserAgent(),
	}); err != nil {
		logger.Log().WithError(err).Error("attack log append failed")
	}
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
	Author  string `json:"author"`
}

// CreateComment is the stored-XSS target. Content is persisted exactly as
// submitted; with defense off an XSS payload survives into the board.
func (h *RangeHandler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content required"})
		return
	}

	if v := h.engine.DetectAll(req.Content); v.Detected {
		h.logUnblocked(c, req.Content, v.Matches[0])
	}

	author := req.Author
	if author == "" {
		author = "anonymous"
	}
	comment := models.Comment{Content: req.Content, Author: author, Timestamp: time.Now().UTC()}
	if err := h.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListComments returns the comment board.
func (h *RangeHandler) ListComments(c *gin.Context) {
	var comments []models.Comment
	if err := h.db.Order("timestamp desc").Limit(100).Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, comments)
}

// SearchUsers is the SQL injection target. A detected payload with defense
// off "succeeds": the handler dumps every simulated user row, the way a
// tautology would.
func (h *RangeHandler) SearchUsers(c *gin.Context) {
	query := c.Query("q")

	var rows []models.RangeUser
	if v := h.engine.DetectAll(query); v.Detected {
		h.logUnblocked(c, query, v.Matches[0])
		if err := h.db.Find(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": rows, "injected": true})
		return
	}

	if err := h.db.Where("username LIKE ?", "%"+query+"%").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": rows, "injected": false})
}

// ReadFile is the path traversal target. A detected traversal with defense
// off returns the sensitive simulated file records.
func (h *RangeHandler) ReadFile(c *gin.Context) {
	path := c.Query("path")

	if v := h.engine.DetectAll(path); v.Detected {
		h.logUnblocked(c, path, v.Matches[0])
		var sensitive []models.RangeFile
		if err := h.db.Where("is_sensitive = ?", true).Find(&sensitive).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"files": sensitive, "traversed": true})
		return
	}

	var file models.RangeFile
	if err := h.db.Where("filename = ? AND is_sensitive = ?", path, false).First(&file).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": []models.RangeFile{file}, "traversed": false})
}

// Ping is the command injection target. A detected payload with defense off
// returns a canned "command output" so the injection visibly ran.
func (h *RangeHandler) Ping(c *gin.Context) {
	host := c.Query("host")

	if v := h.engine.DetectAll(host); v.Detected {
		h.logUnblocked(c, host, v.Matches[0])
		c.JSON(http.StatusOK, gin.H{
			"output":   "PING ok\nuid=0(root) gid=0(root) groups=0(root)",
			"injected": true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"output": "PING " + host + ": 3 packets transmitted, 3 received", "injected": false})
}
