package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hfcipriano/stock-radar-br/internal/screener"
	"github.com/hfcipriano/stock-radar-br/pkg/logger"
)

// SnapshotRefreshJob re-runs the top-discounted screening on a schedule so
// the fetch cache stays warm and the first page load after a quiet period
// does not pay the full fetch cost.
type SnapshotRefreshJob struct {
	screener *screener.Screener
	limit    int
	schedule string
	logger   *logger.Logger
}

// NewSnapshotRefreshJob creates the refresh job
func NewSnapshotRefreshJob(s *screener.Screener, limit int, schedule string, log *logger.Logger) *SnapshotRefreshJob {
	return &SnapshotRefreshJob{
		screener: s,
		limit:    limit,
		schedule: schedule,
		logger:   log.WithField("job", "snapshot_refresh"),
	}
}

// Name returns the job name
func (j *SnapshotRefreshJob) Name() string {
	return "snapshot_refresh"
}

// Schedule returns the cron spec
func (j *SnapshotRefreshJob) Schedule() string {
	return j.schedule
}

// Run executes one refresh
func (j *SnapshotRefreshJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	stocks, err := j.screener.TopDiscounted(ctx, j.limit)
	if err != nil {
		return fmt.Errorf("snapshot refresh: %w", err)
	}

	j.logger.WithField("count", len(stocks)).Info("Screening snapshot refreshed")
	return nil
}
