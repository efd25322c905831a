package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vibrato/internal/audio"
	"vibrato/internal/auth"
	"vibrato/internal/catalog"
	"vibrato/internal/comments"
	"vibrato/internal/config"
	"vibrato/internal/favorites"
	"vibrato/internal/ngrok"
	"vibrato/internal/player"
	"vibrato/internal/playlist"
	"vibrato/internal/server"
	"vibrato/internal/storage"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := "./config.toml"

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}
	applyLogging(logger, cfg.Logging)

	// Persistence backend
	var store storage.Store
	switch cfg.Storage.Backend {
	case "sqlite":
		db, err := storage.NewSQLite(cfg.Storage.Path, logger)
		if err != nil {
			logger.WithError(err).Fatal("Error initializing storage")
		}
		defer db.Close()
		store = db
	default:
		store = storage.NewMemory()
	}

	// Catalog fixtures
	cat := catalog.New(cfg.Catalog.FixturesDir, time.Duration(cfg.Catalog.LoadDelayMillis)*time.Millisecond, logger)
	if err := cat.Load(); err != nil {
		logger.WithError(err).Fatal("Error loading catalog fixtures")
	}
	if cfg.Catalog.WatchForChanges {
		watcher, err := catalog.NewWatcher(cat)
		if err != nil {
			logger.WithError(err).Warn("Fixtures watcher not available")
		} else {
			defer watcher.Close()
		}
	}

	// Audio primitive
	var playback audio.Playback
	if cfg.Player.Backend == "speaker" && audio.SpeakerAvailable {
		playback = audio.NewBeep(logger)
	} else {
		if cfg.Player.Backend == "speaker" {
			logger.Warn("Speaker output not available in this build, using simulated playback")
		}
		playback = audio.NewSim(logger)
	}
	defer playback.Close()

	// Application services
	ply := player.New(playback, store, logger, player.Options{
		StrictPlaybackErrors: cfg.Player.StrictPlaybackErrors,
	})

	playlists, err := playlist.NewStore(store, logger, playlist.Options{
		UndoWindow: time.Duration(cfg.Playlist.UndoWindowSeconds) * time.Second,
	})
	if err != nil {
		logger.WithError(err).Fatal("Error loading playlists")
	}

	sessionDuration, err := time.ParseDuration(cfg.Auth.SessionDuration)
	if err != nil {
		logger.WithError(err).Fatal("Invalid session duration")
	}

	authService := auth.NewService(store, logger, auth.Options{
		HashPasswords: cfg.Auth.HashPasswords,
	})
	sessions := auth.NewSessionManager(sessionDuration, cfg.Auth.SecureCookies)

	tunnel, err := ngrok.NewService(&cfg.Ngrok, logger)
	if err != nil {
		logger.WithError(err).Warn("Ngrok service not available")
		tunnel = nil
	}

	srv := server.New(cfg, logger, server.Services{
		Catalog:   cat,
		Player:    ply,
		Playlists: playlists,
		Favorites: favorites.NewStore(),
		Auth:      authService,
		Sessions:  sessions,
		Comments:  comments.NewStore(store),
		Tunnel:    tunnel,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := srv.Start(ctx); err != nil {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for shutdown signal
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("Received shutdown signal")
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}

// applyLogging configures the logger from the logging section
func applyLogging(logger *logrus.Logger, cfg config.LoggingConfig) {
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
}
