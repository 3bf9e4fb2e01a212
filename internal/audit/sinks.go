package audit

import (
	"context"
	"errors"
	"log/slog"
)

// LogSink writes entries to structured logs. Denials surface at warning
// level so they stand out during security review; allows stay at debug.
type LogSink struct {
	Logger *slog.Logger
}

// Write implements Sink.
func (s LogSink) Write(ctx context.Context, e Entry) error {
	if s.Logger == nil {
		return nil
	}
	level := slog.LevelDebug
	if e.Outcome == OutcomeDeny {
		level = slog.LevelWarn
	}
	s.Logger.LogAttrs(ctx, level, "authz decision",
		slog.Time("at", e.At),
		slog.String("role", e.Role),
		slog.String("principal_id", e.PrincipalID),
		slog.String("endpoint", e.Endpoint),
		slog.String("requirement", e.Requirement),
		slog.String("outcome", e.Outcome),
		slog.String("code", e.Code),
		slog.String("required", e.Required),
	)
	return nil
}

// MultiSink fans an entry out to every sink, collecting failures.
type MultiSink []Sink

// Write implements Sink.
func (m MultiSink) Write(ctx context.Context, e Entry) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
