package jobs

import (
	"context"
	"time"

	"github.com/wonny/symfx/internal/metrics"
	"github.com/wonny/symfx/pkg/logger"
)

// OverrideLister finds local edits the backend has not answered yet
type OverrideLister interface {
	StaleOverrides(maxAge time.Duration) []string
}

// StaleOverrideJob reports optimistic edits that no broadcast has confirmed.
// It never reverts them; the next backend record for the quote does that.
type StaleOverrideJob struct {
	store  OverrideLister
	after  time.Duration
	logger *logger.Logger
}

// NewStaleOverrideJob creates the report job; after <= 0 disables it
func NewStaleOverrideJob(store OverrideLister, after time.Duration, log *logger.Logger) *StaleOverrideJob {
	return &StaleOverrideJob{
		store:  store,
		after:  after,
		logger: log,
	}
}

// Name returns the job name
func (j *StaleOverrideJob) Name() string {
	return "stale_overrides"
}

// Schedule returns the cron schedule
func (j *StaleOverrideJob) Schedule() string {
	return "*/15 * * * * *" // Every 15 seconds
}

// Run lists stale edits and logs them
func (j *StaleOverrideJob) Run(ctx context.Context) error {
	if j.after <= 0 {
		return nil
	}

	stale := j.store.StaleOverrides(j.after)
	metrics.StaleOverrides.Set(float64(len(stale)))
	if len(stale) > 0 {
		j.logger.WithFields(map[string]interface{}{
			"quote_ids": stale,
			"after":     j.after,
		}).Warn("Rate edits still unconfirmed by backend")
	}

	return nil
}
