package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/secdesk/secdesk/transcript"
)

type SessionsCommand struct {
	Config      string `help:"Path to the config file." env:"SECDESK_CONFIG" default:""`
	SessionsDir string `help:"The directory chat transcripts are saved to." env:"SESSIONS_DIR" default:""`
	LogLevel    string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c SessionsCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)
	cfg, err := loadConfig(c.Config)
	if err != nil {
		return err
	}
	sessionsDir := firstNonEmpty(c.SessionsDir, cfg.SessionsDir)
	if sessionsDir == "" {
		if sessionsDir, err = transcript.DefaultDir(); err != nil {
			return err
		}
	}

	sessions, warnings, err := transcript.NewStore(sessionsDir).List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, w := range warnings {
		log.Warn("skipping session", slog.Any("error", w))
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleDefault)
	if isatty.IsTerminal(os.Stdout.Fd()) {
		tw.SetStyle(table.StyleRounded)
	}
	tw.AppendHeader(table.Row{"Started", "Session ID", "Messages", "Summary"})
	for _, s := range sessions {
		tw.AppendRow(table.Row{
			s.StartedAt.Format("2006-01-02 15:04:05"),
			s.ID,
			s.MessageCount,
			s.Summary,
		})
	}
	if len(sessions) == 0 {
		tw.AppendRow(table.Row{"-", "(no sessions)", 0, "-"})
	}
	tw.Render()
	return nil
}
