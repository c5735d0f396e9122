package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/henzelabs/chattrivia/internal/api"
	"github.com/henzelabs/chattrivia/internal/config"
	"github.com/henzelabs/chattrivia/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("trivia server starting", "port", cfg.Port)

	s, err := store.Open(cfg.TriviaDBPath)
	if err != nil {
		slog.Error("failed to open trivia store", "path", cfg.TriviaDBPath, "error", err)
		os.Exit(1)
	}
	defer s.Close()
	slog.Info("trivia store opened", "path", cfg.TriviaDBPath)

	srv := api.NewServer(s, cfg.Port)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("trivia server ready", "port", cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
