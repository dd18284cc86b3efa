package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"noticeboard/internal/metrics"
	"noticeboard/internal/repository"
)

const sweepTimeout = 2 * time.Minute

// ReportSweep deletes reports whose target has disappeared. Deleting content
// removes its reports in the same transaction, so this only catches rows
// left behind by out-of-band deletes.
type ReportSweep struct {
	reports repository.ReportRepository
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewReportSweep(reports repository.ReportRepository, logger *zap.Logger, m *metrics.Metrics) *ReportSweep {
	return &ReportSweep{reports: reports, logger: logger, metrics: m}
}

// Run implements cron.Job.
func (j *ReportSweep) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := j.Sweep(ctx); err != nil {
		j.logger.Error("Report sweep failed", zap.Error(err))
	}
}

// Sweep removes dangling reports and returns how many were deleted.
func (j *ReportSweep) Sweep(ctx context.Context) (int, error) {
	start := time.Now()

	dangling, err := j.reports.FindDangling(ctx)
	if err != nil {
		return 0, err
	}
	if len(dangling) == 0 {
		j.logger.Debug("Report sweep found nothing to remove")
		return 0, nil
	}

	ids := make([]uint, len(dangling))
	for i, r := range dangling {
		ids[i] = r.ID
	}
	if err := j.reports.DeleteByIDs(ctx, ids); err != nil {
		return 0, err
	}

	j.metrics.AddDanglingReportsSwept(len(ids))
	j.logger.Info("Removed dangling reports",
		zap.Int("count", len(ids)),
		zap.Duration("duration", time.Since(start)),
	)
	return len(ids), nil
}

// Schedule registers the sweep on a new cron scheduler. The caller starts
// and stops it.
func Schedule(spec string, sweep *ReportSweep) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddJob(spec, sweep); err != nil {
		return nil, err
	}
	sweep.logger.Info("Report sweep scheduled", zap.String("schedule", spec))
	return c, nil
}
