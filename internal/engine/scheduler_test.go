package engine

import (
	"context"
	"testing"
	"time"
)

func TestNextAnchorDelay(t *testing.T) {
	anchors := []int{0, 6, 12, 18}
	day := func(h, m int) time.Time {
		return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{
			name: "past last anchor wraps to midnight",
			now:  day(19, 30),
			want: 4*time.Hour + 30*time.Minute,
		},
		{
			name: "between anchors",
			now:  day(7, 0),
			want: 5 * time.Hour,
		},
		{
			name: "exactly on an anchor arms the next one",
			now:  day(12, 0),
			want: 6 * time.Hour,
		},
		{
			name: "just after midnight",
			now:  day(0, 1),
			want: 5*time.Hour + 59*time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextAnchorDelay(tt.now, anchors); got != tt.want {
				t.Errorf("nextAnchorDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextAnchorDelay_SingleAnchor(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if got := nextAnchorDelay(now, []int{9}); got != 24*time.Hour {
		t.Errorf("nextAnchorDelay() = %v, want 24h", got)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler([]int{0, 6, 12, 18}, func(ctx context.Context) {}, testLogger())

	if s.Armed() {
		t.Fatal("scheduler should not be armed before Start")
	}

	s.Start(context.Background())
	if !s.Armed() {
		t.Error("scheduler should be armed after Start")
	}

	// Starting twice is a no-op
	s.Start(context.Background())
	if !s.Armed() {
		t.Error("scheduler should stay armed after redundant Start")
	}

	s.Stop()
	if s.Armed() {
		t.Error("scheduler should not be armed after Stop")
	}

	// Stopping twice is a no-op
	s.Stop()
}

func TestScheduler_FiresAtAnchor(t *testing.T) {
	fired := make(chan struct{}, 1)
	s := NewScheduler([]int{0}, func(ctx context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	}, testLogger())

	// Pin the clock a hair before midnight so the first timer is tiny
	s.clock = func() time.Time {
		return time.Date(2026, 3, 10, 23, 59, 59, 990_000_000, time.UTC)
	}

	s.Start(context.Background())
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not fire at the anchor")
	}
}

func TestScheduler_StopLeavesInFlightRunAlive(t *testing.T) {
	started := make(chan context.Context, 1)
	release := make(chan struct{})
	finished := make(chan error, 1)

	s := NewScheduler([]int{0}, func(ctx context.Context) {
		started <- ctx
		<-release
		finished <- ctx.Err()
	}, testLogger())
	s.clock = func() time.Time {
		return time.Date(2026, 3, 10, 23, 59, 59, 990_000_000, time.UTC)
	}

	s.Start(context.Background())

	var runCtx context.Context
	select {
	case runCtx = <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not fire at the anchor")
	}

	// Stop while the sweep is still running: the pending timer goes away
	// but the sweep's context must stay live
	s.Stop()
	if s.Armed() {
		t.Error("scheduler should not be armed after Stop")
	}
	if runCtx.Err() != nil {
		t.Fatal("Stop cancelled the in-flight run")
	}

	close(release)
	select {
	case err := <-finished:
		if err != nil {
			t.Errorf("run finished with context err = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not finish after release")
	}
}
