package dblog

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"ginkit/internal/logger"
	"ginkit/internal/models"
)

// Prune deletes records created before cutoff and returns how many were removed.
func Prune(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("created_at < ?", cutoff.UTC()).Delete(&models.LogRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("dblog: prune: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Pruner removes records older than a retention window on a cron schedule.
type Pruner struct {
	cron      *cron.Cron
	db        *gorm.DB
	retention time.Duration
	now       func() time.Time
}

// NewPruner creates a Pruner keeping retention worth of records.
func NewPruner(db *gorm.DB, retention time.Duration) *Pruner {
	return &Pruner{
		cron:      cron.New(),
		db:        db,
		retention: retention,
		now:       time.Now,
	}
}

// Start schedules pruning with a standard cron spec or descriptor such as
// "@hourly" and starts the scheduler.
func (p *Pruner) Start(schedule string) error {
	if p.retention <= 0 {
		return fmt.Errorf("dblog: retention must be positive, got %s", p.retention)
	}
	if _, err := p.cron.AddFunc(schedule, p.run); err != nil {
		return fmt.Errorf("dblog: invalid prune schedule %q: %w", schedule, err)
	}
	p.cron.Start()
	logger.Named("dblog").Infow("log pruning scheduled", "schedule", schedule, "retention", p.retention.String())
	return nil
}

// Stop halts the scheduler. The returned context is done once a running
// prune has finished.
func (p *Pruner) Stop() context.Context {
	return p.cron.Stop()
}

func (p *Pruner) run() {
	n, err := p.RunOnce(context.Background())
	if err != nil {
		logger.Named("dblog").Warnw("log pruning failed", "error", err)
		return
	}
	if n > 0 {
		logger.Named("dblog").Infow("pruned log records", "count", n)
	}
}

// RunOnce prunes immediately.
func (p *Pruner) RunOnce(ctx context.Context) (int64, error) {
	return Prune(ctx, p.db, p.now().Add(-p.retention))
}
