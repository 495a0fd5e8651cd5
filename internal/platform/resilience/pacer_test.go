package resilience

import (
	"context"
	"testing"
	"time"
)

func TestPacer_SleepsRemainderOfInterval(t *testing.T) {
	t.Parallel()

	p := NewPacer(6 * time.Second)
	current := time.Unix(5000, 0)
	p.now = func() time.Time { return current }

	var slept []time.Duration
	p.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		current = current.Add(d)
		return nil
	}

	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	// Fast call: 2s elapsed, 4s of the floor remain.
	current = current.Add(2 * time.Second)
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("second wait: %v", err)
	}

	if len(slept) == 0 || slept[len(slept)-1] != 4*time.Second {
		t.Fatalf("expected a 4s remainder sleep, got %v", slept)
	}
}

func TestPacer_NoFloorWhenSlowerThanInterval(t *testing.T) {
	t.Parallel()

	p := NewPacer(time.Second)
	current := time.Unix(6000, 0)
	p.now = func() time.Time { return current }
	p.sleep = func(_ context.Context, d time.Duration) error {
		if d > 0 {
			t.Fatalf("unexpected sleep of %v", d)
		}
		return nil
	}

	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	current = current.Add(5 * time.Second)
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("second wait: %v", err)
	}
}
