package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeSweeper struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (f *fakeSweeper) Sweep(context.Context) (int64, error) {
	f.calls.Add(1)
	return f.n, f.err
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		spec string
		ok   bool
	}{
		{"@every 1h", true},
		{"0 3 * * *", true},
		{"@hourly", true},
		{"every hour", false},
		{"61 * * * *", false},
	}
	for _, tt := range tests {
		if err := ValidateSchedule(tt.spec); (err == nil) != tt.ok {
			t.Errorf("ValidateSchedule(%q): got %v, want ok=%v", tt.spec, err, tt.ok)
		}
	}
}

func TestRunNow(t *testing.T) {
	fs := &fakeSweeper{n: 3}
	s := NewScheduler(zap.NewNop())
	s.RunNow(RetentionSweepJob(fs, "", time.Second, zap.NewNop()))
	if fs.calls.Load() != 1 {
		t.Errorf("calls: got %d, want 1", fs.calls.Load())
	}

	// A failing job is logged, not propagated.
	fs.err = errors.New("store down")
	s.RunNow(RetentionSweepJob(fs, "", time.Second, zap.NewNop()))
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	fs := &fakeSweeper{}
	s := NewScheduler(zap.NewNop())
	if err := s.Add(RetentionSweepJob(fs, "@every 1s", time.Second, zap.NewNop())); err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Start()

	deadline := time.Now().Add(3 * time.Second)
	for fs.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	if fs.calls.Load() == 0 {
		t.Error("job never ran")
	}
}

func TestScheduler_AddRejectsBadSpec(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	if err := s.Add(Job{Name: "x", Schedule: "nonsense", Run: func(context.Context) error { return nil }}); err == nil {
		t.Error("expected error")
	}
}
