package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"admin_dashboard/internal/bot"
	"admin_dashboard/internal/config"
	"admin_dashboard/internal/pages"
	"admin_dashboard/internal/recency"
	"admin_dashboard/internal/scheduler"
	"admin_dashboard/internal/server"
	"admin_dashboard/internal/storage"
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

	env := pages.Env{
		Store:    store,
		Location: cfg.Location,
		Clock:    recency.SystemClock{Location: cfg.Location},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var sender scheduler.Sender
	if cfg.BotEnabled() {
		b, err := bot.New(cfg.TelegramBotToken, env, cfg, log)
		if err != nil {
			log.Error("create bot", "error", err)
			os.Exit(1)
		}
		sender = b
		go b.Run(ctx)
		log.Info("telegram console started")
	}

	sched := scheduler.New(store, sender, cfg.NotifyChatID, log)
	sched.SetTickInterval(cfg.StatusCheckInterval)
	sched.SetClock(env.Clock)
	go sched.Run(ctx)

	log.Info("starting dashboard", "addr", cfg.HTTPAddr)

	if err := server.New(env, log).Run(ctx, cfg.HTTPAddr); err != nil {
		log.Error("http server", "error", err)
		os.Exit(1)
	}

	log.Info("dashboard stopped")
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
