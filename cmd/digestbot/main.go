package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"rss_digest/internal/bot"
	"rss_digest/internal/config"
	"rss_digest/internal/scheduler"
	"rss_digest/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	b, err := bot.New(cfg.TelegramBotToken, cfg.TelegramChatID, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logLastDigest(ctx, store, log)

	sched := scheduler.New(cfg, store, b, log)
	if err := sched.Announce(ctx); err != nil {
		log.Error("startup notice", "error", err)
		os.Exit(1)
	}

	log.Info("starting digest loop",
		"feeds", len(cfg.Feeds),
		"poll_interval", cfg.PollInterval,
		"digest_at", fmt.Sprintf("%02d:%02d", cfg.DigestHour, cfg.DigestMinute),
	)

	sched.Run(ctx)

	log.Info("bot stopped")
}

func logLastDigest(ctx context.Context, store storage.Storage, log *slog.Logger) {
	last, err := store.LastDigestSent(ctx)
	switch {
	case errors.Is(err, storage.ErrNoDigestSent):
		log.Info("no digest sent yet")
	case err != nil:
		log.Warn("read last digest", "error", err)
	default:
		log.Info("last digest", "date_key", last.DateKey, "sent_at", last.SentAt)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
