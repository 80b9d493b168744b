package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type CLI struct {
	Chat     ChatCommand     `cmd:"chat" help:"Chat with the security agent."`
	Search   SearchCommand   `cmd:"search" help:"Run a one-shot security event search."`
	Sessions SessionsCommand `cmd:"sessions" help:"List saved chat sessions."`
	Version  VersionCommand  `cmd:"version" help:"Print the version of secdesk."`
}

func main() {
	// A .env file is optional.
	_ = godotenv.Load()

	var cli CLI
	ctx := context.Background()
	kctx := kong.Parse(&cli, kong.UsageOnError(), kong.BindTo(ctx, (*context.Context)(nil)))
	if err := kctx.Run(); err != nil {
		log := getLogger("error")
		log.Error("error", slog.Any("error", err))
		os.Exit(1)
	}
}

func getLogger(level string) *slog.Logger {
	ll := slog.LevelInfo
	switch level {
	case "debug":
		ll = slog.LevelDebug
	case "info":
		ll = slog.LevelInfo
	case "warn":
		ll = slog.LevelWarn
	case "error":
		ll = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: ll,
	}))
}
