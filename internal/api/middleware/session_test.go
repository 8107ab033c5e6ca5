package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kestrelsec/bastion/internal/guard"
	"github.com/kestrelsec/bastion/internal/models"
	"github.com/kestrelsec/bastion/internal/services"
)

func setupSession(t *testing.T) (*services.AuthService, *guard.FingerprintGuard, *services.AttackLogService) {
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Setting{}, &models.AttackLog{}))

	settings := services.NewSettingsService(db)
	auth := services.NewAuthService("test-secret", time.Hour)
	fpGuard := guard.NewFingerprintGuard(settings, 24)
	attacks := services.NewAttackLogService(db, 2000, 500)
	return auth, fpGuard, attacks
}

func sessionRouter(auth *services.AuthService, fpGuard *guard.FingerprintGuard, attacks *services.AttackLogService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Session(auth, fpGuard, attacks), func(c *gin.Context) {
		claims := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"username": claims.Username, "role": claims.Role})
	})
	r.GET("/admin", Session(auth, fpGuard, attacks), RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func sessionRequest(path, token, remoteAddr, agent string) *http.Request {
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	if agent != "" {
		req.Header.Set("User-Agent", agent)
	}
	return req
}

func TestSession_ValidToken(t *testing.T) {
	auth, fpGuard, attacks := setupSession(t)
	r := sessionRouter(auth, fpGuard, attacks)

	fp := fpGuard.Bind("192.0.2.1", "test-agent")
	token, err := auth.IssueToken("operator", "user", fp)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, sessionRequest("/me", token, "192.0.2.1:1234", "test-agent"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "operator")
}

func TestSession_MissingOrGarbageToken(t *testing.T) {
	auth, fpGuard, attacks := setupSession(t)
	r := sessionRouter(auth, fpGuard, attacks)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, sessionRequest("/me", "", "", ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, sessionRequest("/me", "not-a-jwt", "", ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSession_FingerprintViolation(t *testing.T) {
	auth, fpGuard, attacks := setupSession(t)
	r := sessionRouter(auth, fpGuard, attacks)

	fp := fpGuard.Bind("192.0.2.1", "test-agent")
	token, err := auth.IssueToken("operator", "user", fp)
	require.NoError(t, err)

	// Different subnet terminates the session
	w := httptest.NewRecorder()
	r.ServeHTTP(w, sessionRequest("/me", token, "198.51.100.7:1234", "test-agent"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "session terminated")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")

	rows, err := attacks.Recent(10, "session_hijack")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Blocked)
	assert.Equal(t, "high", rows[0].Severity)
}

func TestSession_SameSubnetTolerated(t *testing.T) {
	auth, fpGuard, attacks := setupSession(t)
	r := sessionRouter(auth, fpGuard, attacks)

	fp := fpGuard.Bind("192.0.2.1", "test-agent")
	token, err := auth.IssueToken("operator", "user", fp)
	require.NoError(t, err)

	// Same /24, different host
	w := httptest.NewRecorder()
	r.ServeHTTP(w, sessionRequest("/me", token, "192.0.2.99:1234", "test-agent"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSession_AgentMismatch(t *testing.T) {
	auth, fpGuard, attacks := setupSession(t)
	r := sessionRouter(auth, fpGuard, attacks)

	fp := fpGuard.Bind("192.0.2.1", "test-agent")
	token, err := auth.IssueToken("operator", "user", fp)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, sessionRequest("/me", token, "192.0.2.1:1234", "other-agent"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	auth, fpGuard, attacks := setupSession(t)
	r := sessionRouter(auth, fpGuard, attacks)

	fp := fpGuard.Bind("192.0.2.1", "test-agent")

	userToken, err := auth.IssueToken("plain", "user", fp)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, sessionRequest("/admin", userToken, "192.0.2.1:1234", "test-agent"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken, err := auth.IssueToken("root", "admin", fp)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, sessionRequest("/admin", adminToken, "192.0.2.1:1234", "test-agent"))
	assert.Equal(t, http.StatusOK, w.Code)
}
