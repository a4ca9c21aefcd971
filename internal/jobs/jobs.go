package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/config"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/service"

	"github.com/robfig/cron/v3"
)

const reconcileTimeout = 2 * time.Minute

// Reconciler is the part of the attempt service the history job needs.
type Reconciler interface {
	ReconcileHistory(ctx context.Context, minAge time.Duration, limit int) (*service.ReconcileReport, error)
}

// ReconcileHistoryLinks runs one pass of the history link reconciler.
func ReconcileHistoryLinks(reconciler Reconciler, cfg config.JobsConfig) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()

		report, err := reconciler.ReconcileHistory(ctx, cfg.ReconcileMinAge, cfg.ReconcileBatch)
		if err != nil {
			log.Printf("Error reconciling exam history links: %v", err)
			return
		}
		if report.Scanned == 0 {
			return
		}
		log.Printf("History reconcile: scanned %d, linked %d, abandoned %d, failed %d",
			report.Scanned, report.Linked, report.Abandoned, report.Failed)
	}
}

// Schedule registers the background jobs. It returns nil when every job is disabled.
func Schedule(reconciler Reconciler, cfg config.JobsConfig) (*cron.Cron, error) {
	if cfg.ReconcileSchedule == "" {
		return nil, nil
	}
	if cfg.ReconcileBatch <= 0 {
		return nil, fmt.Errorf("reconcile batch must be positive, got %d", cfg.ReconcileBatch)
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.ReconcileSchedule, ReconcileHistoryLinks(reconciler, cfg)); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", cfg.ReconcileSchedule, err)
	}
	return c, nil
}
