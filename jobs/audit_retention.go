package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/trustverify/trustverify/internal/audit"
	jobmetrics "github.com/trustverify/trustverify/internal/jobs"
)

// AuditRetentionJob removes audit events older than the retention window.
type AuditRetentionJob struct {
	store   *audit.Store
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewAuditRetentionJob constructs the job.
func NewAuditRetentionJob(store *audit.Store, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditRetentionJob {
	return &AuditRetentionJob{store: store, logger: logger, metrics: metrics}
}

// Handle processes TaskAuditRetention tasks.
func (j *AuditRetentionJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload AuditRetentionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.metrics.Track(TaskAuditRetention)
	removed, err := j.store.Purge(ctx, payload.RetentionDays)
	if err != nil {
		return tracker.End(err)
	}
	_ = tracker.End(nil)
	if j.logger != nil {
		j.logger.Info("audit retention run",
			slog.Int("retention_days", payload.RetentionDays),
			slog.Int64("removed", removed))
	}
	return nil
}
