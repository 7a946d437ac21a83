// Package report carries the "Report" action on an unfollower row to
// whatever handles moderation.
package report

import (
	"context"
	"log/slog"
)

type Reporter interface {
	Report(ctx context.Context, r Report) error
}

type ReporterFunc func(ctx context.Context, r Report) error

func (f ReporterFunc) Report(ctx context.Context, r Report) error { return f(ctx, r) }

// LogReporter only records the report in the log.
type LogReporter struct {
	logger *slog.Logger
}

func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (l *LogReporter) Report(ctx context.Context, r Report) error {
	if err := r.Validate(); err != nil {
		return err
	}
	l.logger.Info("Report",
		"report_id", r.ID,
		"session_id", r.SessionID,
		"reporter_fid", r.ReporterFID,
		"target_fid", r.TargetFID)
	return nil
}

// Multi sends a report to every reporter in order, stopping at the first
// error.
type Multi []Reporter

func (m Multi) Report(ctx context.Context, r Report) error {
	for _, rep := range m {
		if err := rep.Report(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
