package maintenance

import (
	"context"
	"time"

	"caterpro-ai/internal/generate"
	"caterpro-ai/internal/metrics"
	"caterpro-ai/internal/share"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const (
	// HistoryKeep is how many generation-history items survive a trim.
	HistoryKeep = 50
	// MetricsRetentionDays is how long execution metrics are kept.
	MetricsRetentionDays = 90
)

// Start registers the daily housekeeping jobs and starts the scheduler.
// The caller owns the returned scheduler and must Shutdown it.
func Start(history *generate.HistoryRepository, metricsStore *metrics.Store, shares *share.Service, logger *zap.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			runOnce(history, metricsStore, shares, logger)
		}),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	return s, nil
}

// runOnce performs one housekeeping sweep. Failures are logged and do
// not stop the remaining steps.
func runOnce(history *generate.HistoryRepository, metricsStore *metrics.Store, shares *share.Service, logger *zap.Logger) {
	ctx := context.Background()

	if trimmed, err := history.TrimTo(ctx, HistoryKeep); err != nil {
		logger.Warn("failed to trim generation history", zap.Error(err))
	} else if trimmed > 0 {
		logger.Info("trimmed generation history", zap.Int64("removed", trimmed))
	}

	if deleted, err := metricsStore.Cleanup(MetricsRetentionDays); err != nil {
		logger.Warn("failed to clean up execution metrics", zap.Error(err))
	} else if deleted > 0 {
		logger.Info("cleaned up execution metrics", zap.Int64("removed", deleted))
	}

	if purged, err := shares.PurgeExpired(ctx); err != nil {
		logger.Warn("failed to purge expired share links", zap.Error(err))
	} else if purged > 0 {
		logger.Info("purged expired share links", zap.Int64("removed", purged))
	}
}
