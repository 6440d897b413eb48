package limiter

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultPurgeSpec runs the purge at minute 7 of every hour.
const DefaultPurgeSpec = "7 * * * *"

// Purger removes stale limiter state.
type Purger interface {
	Purge(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Janitor periodically purges stale login_limiter rows.
type Janitor struct {
	Cron   *cron.Cron
	p      Purger
	retain time.Duration
	log    *zap.Logger
}

// NewJanitor schedules p.Purge on the given cron spec. Call Start to run it.
func NewJanitor(p Purger, spec string, retain time.Duration, log *zap.Logger) (*Janitor, error) {
	j := &Janitor{Cron: cron.New(), p: p, retain: retain, log: log}
	if _, err := j.Cron.AddFunc(spec, j.RunOnce); err != nil {
		return nil, err
	}
	return j, nil
}

// Start runs the scheduler in its own goroutine.
func (j *Janitor) Start() { j.Cron.Start() }

// Stop halts the scheduler and waits for a running purge to finish.
func (j *Janitor) Stop() { <-j.Cron.Stop().Done() }

// RunOnce performs a single purge.
func (j *Janitor) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := j.p.Purge(ctx, j.retain)
	if err != nil {
		j.log.Warn("limiter purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		j.log.Info("limiter purge", zap.Int64("rows", n))
	}
}
