package jobs

import (
	"context"
	"time"

	"country-api/services"

	"github.com/sirupsen/logrus"
)

// RefreshJob runs refresh passes in the background: either on a fixed
// schedule via Start, or one-off via RunOnce when the API triggers an
// async refresh. There is no completion handle; callers observe progress
// through /status or the summary image.
type RefreshJob struct {
	RefreshService *services.RefreshService
	Interval       time.Duration
}

func NewRefreshJob(refreshService *services.RefreshService, interval time.Duration) *RefreshJob {
	return &RefreshJob{
		RefreshService: refreshService,
		Interval:       interval,
	}
}

// Start launches the scheduled refresh loop. A non-positive interval
// disables scheduling entirely.
func (j *RefreshJob) Start() {
	if j.Interval <= 0 {
		logrus.Info("Scheduled refresh job disabled")
		return
	}

	logrus.Infof("Starting scheduled refresh job (runs every %v)...", j.Interval)
	ticker := time.NewTicker(j.Interval)

	go func() {
		// Run immediately on start
		j.RunOnce()

		for range ticker.C {
			j.RunOnce()
		}
	}()
}

// RunOnce executes a single refresh pass with its own timeout context.
func (j *RefreshJob) RunOnce() {
	startTime := time.Now()
	logrus.Info("Running background refresh pass...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	summary, err := j.RefreshService.Refresh(ctx)
	if err != nil {
		logrus.Errorf("Background refresh failed: %v", err)
		return
	}

	logrus.Infof("Background refresh completed: upserted %d countries (took %v)",
		summary.Total, time.Since(startTime))
}
