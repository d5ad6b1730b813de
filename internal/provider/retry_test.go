package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

type scriptedGateway struct {
	searchErrs []error
	calls      int
	summaries  []Summary
}

func (s *scriptedGateway) Name() string { return "scripted" }

func (s *scriptedGateway) Search(ctx context.Context, query string, year int) ([]Summary, error) {
	idx := s.calls
	s.calls++
	if idx < len(s.searchErrs) && s.searchErrs[idx] != nil {
		return nil, s.searchErrs[idx]
	}
	return s.summaries, nil
}

func (s *scriptedGateway) Details(ctx context.Context, id string) (*Result, error) {
	s.calls++
	return nil, nil
}

func TestWithRetryRecoversFromTransientFailures(t *testing.T) {
	inner := &scriptedGateway{
		searchErrs: []error{
			Transient("scripted", errors.New("throttled")),
			Transient("scripted", errors.New("throttled again")),
			nil,
		},
		summaries: []Summary{{ID: "1", Title: "Heat"}},
	}
	var slept []time.Duration
	gw := WithRetry(inner, RetryOptions{
		Attempts:  4,
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  time.Second,
		Sleeper:   func(d time.Duration) { slept = append(slept, d) },
	})

	out, err := gw.Search(context.Background(), "heat", 1995)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out) != 1 || out[0].Title != "Heat" {
		t.Fatalf("unexpected summaries: %+v", out)
	}
	if inner.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", inner.calls)
	}
	if len(slept) != 2 {
		t.Fatalf("expected 2 sleeps, got %d", len(slept))
	}
	if slept[0] < 100*time.Millisecond || slept[1] < 200*time.Millisecond {
		t.Fatalf("backoff did not grow: %v", slept)
	}
}

func TestWithRetryStopsOnPermanentFailure(t *testing.T) {
	inner := &scriptedGateway{
		searchErrs: []error{Permanent("scripted", errors.New("bad key"))},
	}
	gw := WithRetry(inner, RetryOptions{Attempts: 5, Sleeper: func(time.Duration) {}})

	_, err := gw.Search(context.Background(), "heat", 0)
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("permanent failure should not retry, got %d calls", inner.calls)
	}
}

func TestWithRetryGivesUpAfterAttempts(t *testing.T) {
	inner := &scriptedGateway{
		searchErrs: []error{
			Transient("scripted", errors.New("busy")),
			Transient("scripted", errors.New("busy")),
			Transient("scripted", errors.New("busy")),
		},
	}
	gw := WithRetry(inner, RetryOptions{Attempts: 3, Sleeper: func(time.Duration) {}})

	_, err := gw.Search(context.Background(), "heat", 0)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", inner.calls)
	}
}

func TestWithRetryHonorsCancellation(t *testing.T) {
	inner := &scriptedGateway{
		searchErrs: []error{Transient("scripted", errors.New("busy"))},
	}
	ctx, cancel := context.WithCancel(context.Background())
	gw := WithRetry(inner, RetryOptions{
		Attempts:  3,
		BaseDelay: time.Millisecond,
		Sleeper:   func(time.Duration) { cancel() },
	})

	_, err := gw.Search(ctx, "heat", 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 attempt before cancellation, got %d", inner.calls)
	}
}

func TestStatusErrorClassification(t *testing.T) {
	cases := []struct {
		status    int
		transient bool
	}{
		{429, true},
		{502, true},
		{503, true},
		{504, true},
		{401, false},
		{404, false},
		{500, false},
	}
	for _, tc := range cases {
		err := StatusError("tmdb", tc.status)
		if got := IsTransient(err); got != tc.transient {
			t.Errorf("status %d: IsTransient = %v, want %v", tc.status, got, tc.transient)
		}
	}
}
