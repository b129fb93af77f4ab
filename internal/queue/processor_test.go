package queue

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type fakeRunner struct {
	mu       sync.Mutex
	executed []string
	fail     map[string]error
	block    chan struct{} // when set, Run waits on it before returning
}

func (r *fakeRunner) Run(ctx context.Context, item Item, start func(ProcessHandle), relay func(float64, Status)) error {
	r.mu.Lock()
	r.executed = append(r.executed, item.Filename)
	err := r.fail[item.Filename]
	block := r.block
	r.mu.Unlock()
	relay(50, StatusDownloading)
	relay(100, "")
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (r *fakeRunner) order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.executed...)
}

func newTestProcessor(q *Queue, runner Runner) *Processor {
	p := NewProcessor(q, runner)
	p.interval = 5 * time.Millisecond
	p.backoff = 5 * time.Millisecond
	return p
}

func waitFor(t *testing.T, what string, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestProcessorDrainsInOrder(t *testing.T) {
	q := New(filepath.Join(t.TempDir(), "queue.json"), nil)
	q.Add("first", "http://x/1", "", "mp4")
	q.Add("second", "http://x/2", "", "mp4")
	q.Add("third", "http://x/3", "", "mp4")

	runner := &fakeRunner{}
	p := newTestProcessor(q, runner)
	p.Start()
	defer p.Stop()

	waitFor(t, "all jobs to finish", func() bool {
		for _, item := range q.Status() {
			if !item.Status.Terminal() {
				return false
			}
		}
		return true
	})

	order := runner.order()
	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Errorf("execution order = %v", order)
	}
	for _, item := range q.Status() {
		if item.Status != StatusCompleted {
			t.Errorf("job %s = %v", item.Filename, item.Status)
		}
		if item.Progress != 100 {
			t.Errorf("job %s progress = %v", item.Filename, item.Progress)
		}
	}
}

func TestProcessorRecordsRunnerFailure(t *testing.T) {
	q := New(filepath.Join(t.TempDir(), "queue.json"), nil)
	q.Add("broken", "http://x/b", "", "mp4")
	q.Add("fine", "http://x/f", "", "mp4")

	runner := &fakeRunner{fail: map[string]error{"broken": fmt.Errorf("yt-dlp failed: exit status 1")}}
	p := newTestProcessor(q, runner)
	p.Start()
	defer p.Stop()

	waitFor(t, "both jobs to finish", func() bool {
		for _, item := range q.Status() {
			if !item.Status.Terminal() {
				return false
			}
		}
		return true
	})

	items := q.Status()
	if items[0].Status != StatusError || items[0].Error != "yt-dlp failed: exit status 1" {
		t.Errorf("failed job = %+v", items[0])
	}
	if items[1].Status != StatusCompleted {
		t.Errorf("a failure must not block later jobs: %+v", items[1])
	}
}

func TestProcessorSingleFlight(t *testing.T) {
	q := New(filepath.Join(t.TempDir(), "queue.json"), nil)
	q.Add("a", "http://x/a", "", "mp4")
	q.Add("b", "http://x/b", "", "mp4")

	runner := &fakeRunner{block: make(chan struct{})}
	p := newTestProcessor(q, runner)
	p.Start()
	defer p.Stop()

	waitFor(t, "the first job to start", func() bool {
		return len(runner.order()) == 1
	})
	// Give the loop a few ticks; the second job must stay queued while
	// the first is blocked inside the runner.
	time.Sleep(30 * time.Millisecond)
	if got := runner.order(); len(got) != 1 {
		t.Fatalf("runner started %v concurrently", got)
	}
	if item := q.Status()[1]; item.Status != StatusPending {
		t.Errorf("second job = %v, want pending", item.Status)
	}

	close(runner.block)
	waitFor(t, "both jobs to finish", func() bool {
		return len(runner.order()) == 2
	})
}

func TestProcessorStopLeavesInFlightJobForRecovery(t *testing.T) {
	q := New(filepath.Join(t.TempDir(), "queue.json"), nil)
	q.Add("a", "http://x/a", "", "mp4")

	runner := &fakeRunner{block: make(chan struct{})}
	p := newTestProcessor(q, runner)
	p.Start()
	waitFor(t, "the job to start", func() bool {
		return len(runner.order()) == 1
	})
	p.Stop()

	// The record keeps its non-terminal state so the next Load marks it
	// interrupted.
	if item := q.Status()[0]; item.Status.Terminal() {
		t.Errorf("job reached %v, want a non-terminal state left for recovery", item.Status)
	}
}

func TestProcessorSweepHonorsConfiguredRetention(t *testing.T) {
	q := New(filepath.Join(t.TempDir(), "queue.json"), nil)
	id := q.Add("old", "http://x/o", "", "mp4")
	q.Complete(id, "")
	q.mu.Lock()
	stale := time.Now().Add(-48 * time.Hour)
	q.items[id].CompletedAt = &stale
	q.mu.Unlock()

	p := newTestProcessor(q, &fakeRunner{})
	// Under the default 7-day retention a 2-day-old job survives.
	p.sweep()
	if len(q.Status()) != 1 {
		t.Fatal("job removed under default retention")
	}

	p.SetRetention(24 * time.Hour)
	p.sweep()
	if len(q.Status()) != 0 {
		t.Error("job must be removed once retention drops below its age")
	}
}

func TestProcessorSetRetentionIgnoresNonPositive(t *testing.T) {
	p := newTestProcessor(New(filepath.Join(t.TempDir(), "queue.json"), nil), &fakeRunner{})
	p.SetRetention(0)
	if p.retention != DefaultRetention {
		t.Errorf("retention = %v, want default", p.retention)
	}
	p.SetRetention(-time.Hour)
	if p.retention != DefaultRetention {
		t.Errorf("retention = %v, want default", p.retention)
	}
}

func TestProcessorStartIsIdempotent(t *testing.T) {
	q := New(filepath.Join(t.TempDir(), "queue.json"), nil)
	p := newTestProcessor(q, &fakeRunner{})
	p.Start()
	p.Start()
	p.Stop()
	p.Stop()
}
