package routes

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/kestrelsec/bastion/internal/aegis"
	"github.com/kestrelsec/bastion/internal/api/handlers"
	"github.com/kestrelsec/bastion/internal/api/middleware"
	"github.com/kestrelsec/bastion/internal/config"
	"github.com/kestrelsec/bastion/internal/database"
	"github.com/kestrelsec/bastion/internal/detector"
	"github.com/kestrelsec/bastion/internal/guard"
	"github.com/kestrelsec/bastion/internal/metrics"
	"github.com/kestrelsec/bastion/internal/services"
)

// Register wires up API routes and performs automatic migrations.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) error {
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("register routes: %w", err)
	}

	engine := detector.NewEngine()
	settings := services.NewSettingsService(db)
	attacks := services.NewAttackLogService(db, cfg.Defense.MaxPayloadLen, cfg.Defense.MaxFieldLen)
	bans := services.NewBanService(db)
	abuse := services.NewAbuseEventService(db)
	attempts := services.NewLoginAttemptService(db)
	notifier := services.NewNotifier(cfg.NotifyURL)

	limiter := guard.NewRateLimiter(abuse, map[string]guard.BucketLimit{
		guard.BucketLogin:   {Window: time.Duration(cfg.Defense.LoginBucketWindow) * time.Second, Max: cfg.Defense.LoginBucketMax},
		guard.BucketAPI:     {Window: time.Duration(cfg.Defense.APIBucketWindow) * time.Second, Max: cfg.Defense.APIBucketMax},
		guard.BucketGeneral: {Window: time.Duration(cfg.Defense.GeneralBucketWindow) * time.Second, Max: cfg.Defense.GeneralBucketMax},
	})
	bfConfig := guard.BruteForceConfig{
		UsernameFailWindow:           time.Duration(cfg.Defense.UsernameFailWindowSeconds) * time.Second,
		UsernameFailThreshold:        cfg.Defense.UsernameFailThreshold,
		IPWindow:                     time.Duration(cfg.Defense.IPWindowSeconds) * time.Second,
		IPDistinctUsernamesThreshold: cfg.Defense.IPDistinctUsernamesThreshold,
	}
	bruteforce := guard.NewBruteForce(attempts, settings, bfConfig)
	fpGuard := guard.NewFingerprintGuard(settings, cfg.Defense.SubnetPrefixLen)
	auth := services.NewAuthService(cfg.JWTSecret, 12*time.Hour)

	shield := aegis.New(engine, limiter, settings, bans, attacks, notifier)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.GET("/api/v1/health", handlers.HealthHandler)

	api := router.Group("/api/v1")
	api.Use(shield.AdmissionMiddleware(), shield.DetectionMiddleware())

	authHandler := handlers.NewAuthHandler(db, auth, bruteforce, fpGuard, settings, attacks)
	securityHandler := handlers.NewSecurityHandler(engine, settings, attacks, attempts, bfConfig)
	logsHandler := handlers.NewLogsHandler(attacks)
	banHandler := handlers.NewBanHandler(bans, notifier)
	rangeHandler := handlers.NewRangeHandler(db, engine, settings, attacks)

	session := middleware.Session(auth, fpGuard, attacks)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", session, authHandler.Me)

	api.POST("/security/detect", securityHandler.Detect)
	api.POST("/security/password-check", securityHandler.CheckPassword)
	api.GET("/security/status", securityHandler.Status)
	api.GET("/security/flags", securityHandler.GetFlags)
	api.POST("/security/flags", session, middleware.RequireAdmin(), securityHandler.SetFlag)
	api.GET("/security/events", session, securityHandler.RecentEvents)

	api.GET("/logs", session, logsHandler.List)
	api.GET("/logs/stats", session, logsHandler.Stats)

	bansGroup := api.Group("/bans", session, middleware.RequireAdmin())
	bansGroup.GET("", banHandler.List)
	bansGroup.POST("", banHandler.Ban)
	bansGroup.DELETE("/:ip", banHandler.Unban)

	rangeGroup := api.Group("/range")
	rangeGroup.GET("/comments", rangeHandler.ListComments)
	rangeGroup.POST("/comments", rangeHandler.CreateComment)
	rangeGroup.GET("/search", rangeHandler.SearchUsers)
	rangeGroup.GET("/files", rangeHandler.ReadFile)
	rangeGroup.GET("/ping", rangeHandler.Ping)

	return nil
}
