package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kestrelsec/bastion/internal/models"
	"github.com/kestrelsec/bastion/internal/services"
)

func setupBanHandler(t *testing.T) (*BanHandler, *services.BanService) {
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.BannedIP{}))

	bans := services.NewBanService(db)
	return NewBanHandler(bans, services.NewNotifier("")), bans
}

func banRouter(h *BanHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/bans", h.List)
	r.POST("/bans", h.Ban)
	r.DELETE("/bans/:ip", h.Unban)
	return r
}

func TestBanHandler_BanAndList(t *testing.T) {
	h, bans := setupBanHandler(t)
	r := banRouter(h)

	w := postJSON(r, "/bans", map[string]any{"ip": "203.0.113.9"})
	assert.Equal(t, http.StatusOK, w.Code)

	banned, err := bans.IsBanned("203.0.113.9")
	require.NoError(t, err)
	assert.True(t, banned)

	req := httptest.NewRequest("GET", "/bans", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var rows []models.BannedIP
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "203.0.113.9", rows[0].IP)
	assert.False(t, rows[0].Permanent)
	assert.NotNil(t, rows[0].ExpiresAt)
}

func TestBanHandler_PermanentBan(t *testing.T) {
	h, bans := setupBanHandler(t)
	r := banRouter(h)

	w := postJSON(r, "/bans", map[string]any{"ip": "203.0.113.10", "permanent": true})
	assert.Equal(t, http.StatusOK, w.Code)

	banned, err := bans.IsBanned("203.0.113.10")
	require.NoError(t, err)
	assert.True(t, banned)
}

func TestBanHandler_Unban(t *testing.T) {
	h, bans := setupBanHandler(t)
	r := banRouter(h)

	postJSON(r, "/bans", map[string]any{"ip": "203.0.113.11"})

	req := httptest.NewRequest("DELETE", "/bans/203.0.113.11", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	banned, err := bans.IsBanned("203.0.113.11")
	require.NoError(t, err)
	assert.False(t, banned)

	// Second unban is a 404
	req = httptest.NewRequest("DELETE", "/bans/203.0.113.11", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBanHandler_BadRequest(t *testing.T) {
	h, _ := setupBanHandler(t)
	r := banRouter(h)

	w := postJSON(r, "/bans", map[string]any{"permanent": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
