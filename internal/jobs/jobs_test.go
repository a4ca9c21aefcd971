package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/config"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/service"
)

type fakeReconciler struct {
	calls  int
	minAge time.Duration
	limit  int
	err    error
}

func (f *fakeReconciler) ReconcileHistory(ctx context.Context, minAge time.Duration, limit int) (*service.ReconcileReport, error) {
	f.calls++
	f.minAge = minAge
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return &service.ReconcileReport{Scanned: 1, Linked: 1}, nil
}

func TestSchedule(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       config.JobsConfig
		expectNil bool
		expectErr bool
	}{
		{"disabled", config.JobsConfig{}, true, false},
		{"valid", config.JobsConfig{ReconcileSchedule: "*/5 * * * *", ReconcileBatch: 10}, false, false},
		{"bad schedule", config.JobsConfig{ReconcileSchedule: "every five minutes", ReconcileBatch: 10}, true, true},
		{"bad batch", config.JobsConfig{ReconcileSchedule: "*/5 * * * *"}, true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Schedule(&fakeReconciler{}, tc.cfg)
			if (err != nil) != tc.expectErr {
				t.Fatalf("Expected error %v, got %v", tc.expectErr, err)
			}
			if (c == nil) != tc.expectNil {
				t.Errorf("Expected nil scheduler %v, got %v", tc.expectNil, c)
			}
			if c != nil && len(c.Entries()) != 1 {
				t.Errorf("Expected 1 scheduled job, got %d", len(c.Entries()))
			}
		})
	}
}

func TestReconcileHistoryLinks(t *testing.T) {
	reconciler := &fakeReconciler{}
	cfg := config.JobsConfig{ReconcileMinAge: 2 * time.Minute, ReconcileBatch: 50}

	ReconcileHistoryLinks(reconciler, cfg)()
	if reconciler.calls != 1 || reconciler.minAge != 2*time.Minute || reconciler.limit != 50 {
		t.Errorf("Unexpected reconcile call %+v", reconciler)
	}

	reconciler.err = errors.New("mongo down")
	ReconcileHistoryLinks(reconciler, cfg)()
	if reconciler.calls != 2 {
		t.Errorf("Expected the job to run again after an error, got %d calls", reconciler.calls)
	}
}
