package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alphanest/arbscan/internal/domain"
)

type fakeDetector struct {
	mu     sync.Mutex
	cycles int
	result domain.CycleResult
}

func (f *fakeDetector) Detect(context.Context) domain.CycleResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cycles++
	res := f.result
	res.ID = res.ID + "-" + string(rune('0'+f.cycles))
	return res
}

func (f *fakeDetector) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cycles
}

type recordingSink struct {
	mu   sync.Mutex
	got  []domain.CycleResult
	fail error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) HandleCycle(_ context.Context, res domain.CycleResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, res)
	return s.fail
}

func (s *recordingSink) received() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRunFirstCycleImmediate(t *testing.T) {
	det := &fakeDetector{result: domain.CycleResult{ID: "c"}}
	sink := &recordingSink{}
	p := New(det, []Sink{sink}, nil, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitFor(t, func() bool { return sink.received() >= 1 })
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	if det.count() != 1 {
		t.Fatalf("detector ran %d cycles before first tick, want 1", det.count())
	}
}

func TestRunRepeatsOnInterval(t *testing.T) {
	det := &fakeDetector{result: domain.CycleResult{ID: "c"}}
	p := New(det, nil, nil, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitFor(t, func() bool { return det.count() >= 3 })
	cancel()
	<-done
}

func TestSinkErrorDoesNotStopLoop(t *testing.T) {
	det := &fakeDetector{result: domain.CycleResult{ID: "c"}}
	sink := &recordingSink{fail: errors.New("kafka: broker unreachable")}
	p := New(det, []Sink{sink}, nil, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitFor(t, func() bool { return sink.received() >= 3 })
	cancel()
	<-done
}

func TestLatest(t *testing.T) {
	det := &fakeDetector{result: domain.CycleResult{ID: "c"}}
	p := New(det, nil, nil, time.Hour, testLogger())

	if _, ok := p.Latest(); ok {
		t.Fatal("Latest before any cycle must report not-ready")
	}

	p.runCycle(context.Background())
	res, ok := p.Latest()
	if !ok || res.ID == "" {
		t.Fatalf("Latest after a cycle = (%+v, %v)", res, ok)
	}
}

func TestDefaultInterval(t *testing.T) {
	p := New(&fakeDetector{}, nil, nil, 0, testLogger())
	if p.interval != DefaultInterval {
		t.Fatalf("interval = %v, want %v", p.interval, DefaultInterval)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}
