package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/secdesk/secdesk/client"
	"github.com/secdesk/secdesk/models"
)

type SearchCommand struct {
	Query       string `arg:"" help:"The query to send, in natural language."`
	Config      string `help:"Path to the config file." env:"SECDESK_CONFIG" default:""`
	AgentURL    string `help:"The URL of the agent API." env:"AGENT_URL" default:""`
	AgentAPIKey string `help:"The API key for the agent API." env:"AGENT_API_KEY" default:""`
	LogLevel    string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c SearchCommand) Run(ctx context.Context) (err error) {
	cfg, err := loadConfig(c.Config)
	if err != nil {
		return err
	}
	agentURL := firstNonEmpty(c.AgentURL, cfg.AgentURL, defaultAgentURL)
	ac := client.New(agentURL, firstNonEmpty(c.AgentAPIKey, cfg.AgentAPIKey))

	resp, err := ac.SearchPost(ctx, models.SearchPostRequest{Query: c.Query})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Println(resp.Result)
	if resp.StructuredReport != nil {
		fmt.Println()
		renderReport(os.Stdout, resp.StructuredReport, isatty.IsTerminal(os.Stdout.Fd()))
	}
	return nil
}

func renderReport(w io.Writer, report *models.SecurityEventReport, isTTY bool) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleDefault)
	if isTTY {
		tw.SetStyle(table.StyleRounded)
	}
	tw.AppendHeader(table.Row{"Field", "Value"})
	tw.AppendRow(table.Row{"Status", severityIndicator(report.Severity, report.TotalHits)})
	tw.AppendRow(table.Row{"Event time", report.EventTime})
	tw.AppendRow(table.Row{"Event type", report.EventType})
	tw.AppendRow(table.Row{"Severity", report.Severity})
	tw.AppendRow(table.Row{"Total hits", report.TotalHits})
	tw.AppendRow(table.Row{"Username", report.Username})
	tw.AppendRow(table.Row{"Hostname", report.Hostname})
	tw.AppendRow(table.Row{"Host IP", report.HostIP})
	tw.AppendRow(table.Row{"Description", report.Description})
	tw.Render()

	if len(report.RecommendedActions) > 0 {
		fmt.Fprintln(w, "\nRecommended actions:")
		for _, action := range report.RecommendedActions {
			fmt.Fprintf(w, "  - %s\n", action)
		}
	}
	if len(report.LogSamples) > 0 {
		fmt.Fprintln(w, "\nLog samples:")
		for _, sample := range report.LogSamples {
			fmt.Fprintln(w, formatLogSample(sample, 10))
		}
	}
}

// severityIndicator maps the report's severity and hit count to a one-line
// status. Hit counts escalate the status even when the agent reports a lower
// severity.
func severityIndicator(severity string, totalHits int) string {
	switch {
	case strings.EqualFold(severity, "high") || totalHits > 100:
		return "🔴 high risk"
	case strings.EqualFold(severity, "medium") || totalHits > 10:
		return "🟡 elevated"
	case strings.EqualFold(severity, "low") || totalHits > 0:
		return "🟠 low"
	default:
		return "✅ clear"
	}
}

// formatLogSample pretty-prints JSON log samples, truncated to maxLines.
// Non-JSON samples pass through untouched.
func formatLogSample(sample string, maxLines int) string {
	var parsed any
	if err := json.Unmarshal([]byte(sample), &parsed); err != nil {
		return sample
	}
	formatted, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return sample
	}
	lines := strings.Split(string(formatted), "\n")
	if len(lines) > maxLines {
		return strings.Join(lines[:maxLines], "\n") + "\n  ...(truncated)"
	}
	return string(formatted)
}
