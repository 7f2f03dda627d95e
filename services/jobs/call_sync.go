package jobs

import (
	"context"
	"fmt"
	"time"

	"dispatch_crm_go/logger"
	"dispatch_crm_go/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// callSyncTimeout bounds one scheduled reconciliation run
const callSyncTimeout = 10 * time.Minute

// CallSyncer pulls the provider's call report into the call log
type CallSyncer interface {
	Sync(ctx context.Context) (*services.SyncResult, error)
}

// cronLogger routes cron's own messages to zap
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.L().Sugar().Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.L().Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

// StartCallSyncScheduler runs the call reconciliation on a cron schedule in the
// given timezone. An empty spec disables the schedule and returns nil. A run
// still in progress when the next one is due makes that next run skip.
func StartCallSyncScheduler(syncer CallSyncer, spec, timezone string) (*cron.Cron, error) {
	if spec == "" {
		logger.L().Info("Scheduled call sync disabled")
		return nil, nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.L().Warn("Unknown call sync timezone, using UTC", zap.String("timezone", timezone), zap.Error(err))
		loc = time.UTC
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), callSyncTimeout)
		defer cancel()
		RunCallSync(ctx, syncer)
	}); err != nil {
		return nil, fmt.Errorf("invalid call sync schedule %q: %w", spec, err)
	}

	c.Start()
	logger.L().Info("Call sync scheduler started", zap.String("spec", spec), zap.String("timezone", loc.String()))
	return c, nil
}

// RunCallSync performs one reconciliation and logs its outcome
func RunCallSync(ctx context.Context, syncer CallSyncer) (*services.SyncResult, error) {
	started := time.Now()
	result, err := syncer.Sync(ctx)
	if err != nil {
		logger.L().Error("Call sync failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return result, err
	}

	logger.L().Info("Call sync completed",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("inserted", result.Inserted),
		zap.Int("duplicates", result.Duplicates),
	)
	return result, nil
}
