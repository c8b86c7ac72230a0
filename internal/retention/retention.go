// Package retention purges messages older than a configured period from
// the conversation store on a cron schedule.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"chatsim/pkg/config"
	"chatsim/pkg/logger"
	"chatsim/pkg/store"
)

// Start starts the retention scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, s *store.Store, cfg config.RetentionConfig) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}

	period, err := time.ParseDuration(cfg.Period)
	if err != nil || period <= 0 {
		return nil, fmt.Errorf("invalid retention period: %q", cfg.Period)
	}

	// map empty cron to default daily @02:00
	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", cfg.Cron)
		return nil, fmt.Errorf("invalid retention cron expression: %s", cfg.Cron)
	}

	logger.Info("retention_enabled", "cron", cronExpr, "period", cfg.Period)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, s, cfg, cronExpr, period)
	return cancel, nil
}

// runScheduler uses gronx to compute the next tick for the configured cron
// expression and sleeps until that time.
func runScheduler(ctx context.Context, s *store.Store, cfg config.RetentionConfig, cronExpr string, period time.Duration) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if err := RunOnce(ctx, s, cfg, period); err != nil {
				logger.Error("retention_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
	}
}

// RunOnce performs a single purge pass over all conversations, deleting
// messages whose timestamp is older than the period. Deletions go through
// the store so persistence and metrics stay consistent. Batches are
// throttled with the configured sleep to keep the pass cooperative.
func RunOnce(ctx context.Context, s *store.Store, cfg config.RetentionConfig, period time.Duration) error {
	cutoff := time.Now().UTC().Add(-period).UnixNano()
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 100
	}
	sleep := time.Duration(cfg.BatchSleepMs) * time.Millisecond

	purged := 0
	inBatch := 0
	for _, conv := range s.Conversations() {
		for _, m := range conv.Messages {
			if m.TS >= cutoff {
				continue
			}
			if cfg.DryRun {
				purged++
				continue
			}
			if err := s.DeleteMessage(conv.ID, m.ID); err != nil {
				logger.Warn("retention_delete_failed", "conversation", conv.ID, "message", m.ID, "error", err)
				continue
			}
			purged++
			inBatch++
			if inBatch >= batch {
				inBatch = 0
				select {
				case <-time.After(sleep):
				case <-ctx.Done():
					logger.Info("retention_run_cancelled", "purged", purged)
					return ctx.Err()
				}
			}
		}
	}
	logger.Info("retention_run_complete", "purged", purged, "dry_run", cfg.DryRun)
	return nil
}
