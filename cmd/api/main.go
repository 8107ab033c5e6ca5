package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kestrelsec/bastion/internal/config"
	"github.com/kestrelsec/bastion/internal/database"
	"github.com/kestrelsec/bastion/internal/logger"
	"github.com/kestrelsec/bastion/internal/server"
	"github.com/kestrelsec/bastion/internal/services"
	"github.com/kestrelsec/bastion/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Setup logging with rotation
	logDir := filepath.Join(filepath.Dir(cfg.DatabasePath), "logs")
	_ = os.MkdirAll(logDir, 0o755)
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "bastion.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	// Log to both stdout and file
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))

	logger.Log().Infof("%s v%s starting", version.Name, version.Full())

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Log().Fatalf("open database: %v", err)
	}

	srv, err := server.New(db, cfg)
	if err != nil {
		logger.Log().Fatalf("setup server: %v", err)
	}

	sweeper := services.NewSweeper(
		services.NewAbuseEventService(db),
		services.NewBanService(db),
		services.DefaultAbuseRetention,
	)
	if err := sweeper.Start(); err != nil {
		logger.Log().Fatalf("start sweeper: %v", err)
	}
	defer sweeper.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log().Infof("listening on :%s", cfg.HTTPPort)
	if err := srv.Run(ctx); err != nil {
		logger.Log().Fatalf("server: %v", err)
	}
	logger.Log().Info("shutdown complete")
}
