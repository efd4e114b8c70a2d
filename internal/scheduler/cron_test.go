package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestCronRejectsBadSpec(t *testing.T) {
	t.Parallel()

	c := NewCron("not a spec", nil)
	if err := c.Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestCronStartAndStop(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewCron("0 * * * *", nil)
	if err := c.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := c.Start(ctx, func(time.Time) {}); err == nil {
		t.Fatal("second start should fail")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := c.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestCronStopWithoutStart(t *testing.T) {
	t.Parallel()

	c := NewCron("0 * * * *", nil)
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop on unstarted scheduler should be a no-op, got %v", err)
	}
}
