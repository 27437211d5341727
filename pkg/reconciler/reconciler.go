// Package reconciler repairs the gap between on-chain reality and the
// database: a deploy whose gateway call succeeded but whose token row was
// never written leaves a journal entry the sweep turns back into a Token.
package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/attnlabs/viral-middleware/internal/metrics"
	"github.com/attnlabs/viral-middleware/pkg/token"
)

const sweepBatchSize = 100

// Reconciler sweeps stale pending-deploy journal entries.
type Reconciler struct {
	store       token.Store
	gracePeriod time.Duration
	logger      *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a new Reconciler. gracePeriod is how old a journal entry
// must be before the sweep touches it, so in-flight deploys are left alone.
func New(store token.Store, gracePeriod time.Duration, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		store:       store,
		gracePeriod: gracePeriod,
		logger:      logger,
		stopCh:      make(chan struct{}),
	}
}

// Sweep processes journal entries older than the grace period. Entries
// with a known contract address are re-inserted as tokens keyed by that
// address, so a sweep racing a late orchestrator write applies nothing.
// Entries without one mean the gateway was never (successfully) called;
// they are just cleared.
func (r *Reconciler) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-r.gracePeriod)

	stale, err := r.store.StalePendingDeploys(ctx, cutoff, sweepBatchSize)
	if err != nil {
		metrics.ReconcileSweepsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to list stale deploy attempts: %w", err)
	}
	if len(stale) == 0 {
		metrics.ReconcileSweepsTotal.WithLabelValues("clean").Inc()
		return nil
	}

	recovered := 0
	for _, attempt := range stale {
		if attempt.ContractAddress != "" {
			err := r.store.UpsertToken(ctx, &token.Token{
				ContractAddress: attempt.ContractAddress,
				Name:            attempt.Name,
				Symbol:          attempt.Symbol,
				OwnerAddress:    attempt.OwnerAddress,
				OriginalPost:    attempt.OriginalPost,
				SplitAddress:    attempt.SplitAddress,
			})
			if err != nil {
				r.logger.Error("Failed to recover token from deploy journal",
					zap.String("attempt_id", attempt.AttemptID),
					zap.String("contract_address", attempt.ContractAddress),
					zap.Error(err))
				continue
			}
			recovered++
			r.logger.Warn("Recovered token missing from database",
				zap.String("contract_address", attempt.ContractAddress),
				zap.String("user_id", attempt.UserID))
		}

		if err := r.store.DeletePendingDeploy(ctx, attempt.AttemptID); err != nil {
			r.logger.Warn("Failed to clear swept journal entry",
				zap.String("attempt_id", attempt.AttemptID),
				zap.Error(err))
		}
	}

	metrics.ReconcileSweepsTotal.WithLabelValues("swept").Inc()
	r.logger.Info("Deploy journal sweep completed",
		zap.Int("stale_entries", len(stale)),
		zap.Int("recovered_tokens", recovered))
	return nil
}

// StartPeriodicSweep starts a background goroutine that sweeps at the
// given interval.
func (r *Reconciler) StartPeriodicSweep(interval time.Duration) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		r.logger.Info("Started periodic deploy journal sweep", zap.Duration("interval", interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				if err := r.Sweep(ctx); err != nil {
					r.logger.Error("Periodic sweep failed", zap.Error(err))
				}
				cancel()
			case <-r.stopCh:
				r.logger.Info("Stopping periodic sweep")
				return
			}
		}
	}()
}

// Stop stops the periodic sweep.
func (r *Reconciler) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}
