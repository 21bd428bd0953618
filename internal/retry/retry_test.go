package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoffWaitDuration(t *testing.T) {
	b := NewBackoff(100*time.Millisecond, time.Second, false)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 100 * time.Millisecond},
		{attempt: 1, want: 200 * time.Millisecond},
		{attempt: 2, want: 400 * time.Millisecond},
		{attempt: 10, want: time.Second}, // упирается в кап
	}
	for _, tt := range tests {
		if got := b.WaitDuration(tt.attempt); got != tt.want {
			t.Fatalf("attempt %d: got %v, want %v", tt.attempt, got, tt.want)
		}
	}

	if (*Backoff)(nil).WaitDuration(1) != 0 {
		t.Fatal("nil backoff must yield zero wait")
	}
}

func TestBackoffJitterWithinCap(t *testing.T) {
	b := NewBackoff(100*time.Millisecond, time.Second, true)
	for i := 0; i < 50; i++ {
		if w := b.WaitDuration(5); w < 0 || w > time.Second {
			t.Fatalf("jittered wait out of range: %v", w)
		}
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{MaxRetries: 5}, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestDoStopsOnNonRetriable(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0
	err := Do(context.Background(), Policy{
		MaxRetries:  5,
		ShouldRetry: func(err error) bool { return false },
	}, func() error {
		calls++
		return fatal
	}, nil)
	if !errors.Is(err, fatal) {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls)
	}
}

func TestDoHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, Policy{MaxRetries: 3}, func() error {
		return errors.New("never retried")
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
