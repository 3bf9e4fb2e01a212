package app

import (
	"log/slog"
	"os"
)

// NewLogger returns the service logger. JSON output for machine ingestion
// when configured, human-readable text otherwise. Every record carries the
// service attribute so shared log pipelines can filter on it.
func NewLogger(cfg *Config) *slog.Logger {
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true})
	}
	return slog.New(handler).With(slog.String("service", "trustverify"))
}
