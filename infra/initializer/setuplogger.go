package initializer

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/gamewallet/wallet/pkg/config"
)

var formatters = map[string]log.Formatter{
	"json":   log.JSONFormatter,
	"text":   log.TextFormatter,
	"logfmt": log.LogfmtFormatter,
}

func levelStyle(icon string, color lipgloss.AdaptiveColor) lipgloss.Style {
	return lipgloss.NewStyle().
		SetString(icon).
		Bold(true).
		Padding(0, 1).
		Foreground(color)
}

func setupLogger(cfg *config.Log) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Format: "text", TimeFormat: "2006-01-02 15:04:05", Prefix: "[wallet]"}
	}

	infoColor := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warnColor := lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}
	debugColor := lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}

	styles := log.DefaultStyles()
	styles.Levels[log.ErrorLevel] = levelStyle("❌", errorColor)
	styles.Levels[log.WarnLevel] = levelStyle("⚠️", warnColor)
	styles.Levels[log.InfoLevel] = levelStyle("ℹ️", infoColor)
	styles.Levels[log.DebugLevel] = levelStyle("🐛", debugColor)

	// Settlement keys get highlighted so a tail of the log reads as a ledger.
	for key, color := range map[string]lipgloss.AdaptiveColor{
		"error":        errorColor,
		"order_code":   infoColor,
		"outcome":      infoColor,
		"reason":       warnColor,
		"promotion_id": infoColor,
		"user_id":      debugColor,
	} {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(color)
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}

	formatter := log.TextFormatter
	if f, ok := formatters[cfg.Format]; ok {
		formatter = f
	}

	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(styles)

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
