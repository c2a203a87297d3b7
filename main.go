package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"predserve/config"
	"predserve/db"
	qhttp "predserve/http"
	"predserve/logger"
)

const configPath = "config.yaml"

func main() {
	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, level, err := logger.New("predserve", logger.Config{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logg.Sync()

	// 2. Open the store: DATABASE_URL selects postgres, otherwise the local
	// sqlite file. Chosen once, never re-evaluated.
	store, err := db.Open(config.DatabaseURL(), cfg.Database.Path)
	if err != nil {
		logg.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()
	logg.Info("store opened", zap.String("sqlite_path", cfg.Database.Path),
		zap.Bool("postgres", config.DatabaseURL() != ""))

	// 3. Watch the config file so the log level can be adjusted at runtime.
	if _, err := os.Stat(configPath); err == nil {
		watcher, err := config.Watch(configPath, logg, func(fresh *config.Config) {
			level.SetLevel(logger.ParseLevel(fresh.Log.Level))
		})
		if err != nil {
			logg.Warn("config watcher unavailable", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	// 4. Start HTTP server
	serverConfig := qhttp.DefaultServerConfig()
	serverConfig.Port = cfg.Http.Port
	handlers := qhttp.NewHandlers(store, logg)
	server := qhttp.NewServer(serverConfig, handlers, logg)
	go func() {
		if err := server.Start(); err != nil {
			logg.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 5. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logg.Info("shutting down")

	if err := server.Stop(); err != nil {
		logg.Warn("server forced to shutdown", zap.Error(err))
	}
}
