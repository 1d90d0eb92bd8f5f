package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"tagsmith/internal/config"
	"tagsmith/internal/daemon"
	"tagsmith/internal/history"
	"tagsmith/internal/inference"
	"tagsmith/internal/logging"
	"tagsmith/internal/preflight"
	"tagsmith/internal/tagstore"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewDaemonLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	for _, result := range preflight.RunAll(ctx, cfg) {
		if result.Passed {
			logger.Info("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
			continue
		}
		logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail))
	}

	store := tagstore.New(cfg.Paths.SettingsFile, logger)

	var hist *history.Store
	if cfg.History.Enabled {
		hist, err = history.Open(cfg.History.Path)
		if err != nil {
			logger.Warn("history disabled",
				logging.String(logging.FieldEventType, "history_unavailable"),
				logging.Error(err))
			hist = nil
		}
	}

	infer := inference.NewConfiguredClient(cfg)

	d, err := daemon.New(cfg, store, hist, infer, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	logger.Info("tagsmithd running",
		logging.String("settings_file", cfg.Paths.SettingsFile),
		logging.String("api_addr", d.APIAddr()))

	<-ctx.Done()
	d.Stop()
	logger.Info("tagsmithd shutting down")
}
