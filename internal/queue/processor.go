package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Runner executes the external download/transcode work for one job. start
// must be called with the process handle as soon as the subprocess is up so a
// concurrent Cancel can reach it; relay receives every parseable progress
// update. A non-nil error becomes the job's failure reason.
type Runner interface {
	Run(ctx context.Context, item Item, start func(ProcessHandle), relay func(progress float64, status Status)) error
}

// cleanupCycle is the number of loop iterations between retention sweeps,
// roughly 24 hours at the default interval.
const cleanupCycle = 17280

// Processor is the single-flight worker loop draining the queue.
type Processor struct {
	queue     *Queue
	runner    Runner
	interval  time.Duration
	backoff   time.Duration
	retention time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewProcessor(q *Queue, runner Runner) *Processor {
	return &Processor{
		queue:     q,
		runner:    runner,
		interval:  5 * time.Second,
		backoff:   10 * time.Second,
		retention: DefaultRetention,
	}
}

// SetRetention overrides how long finished jobs survive the periodic cleanup.
// Non-positive values are ignored.
func (p *Processor) SetRetention(retention time.Duration) {
	if retention > 0 {
		p.retention = retention
	}
}

// Start launches the worker loop. Calling Start on a running processor is a
// no-op.
func (p *Processor) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.running = true
	p.cancel = cancel
	p.done = make(chan struct{})
	p.mu.Unlock()
	go p.loop(ctx)
}

// Stop halts the loop and cancels any in-flight job, waiting for the worker
// goroutine to exit. Cancellation here is a normal shutdown path.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	done := p.done
	p.mu.Unlock()
	<-done
	log.Info().Str("op", "queue/processor").Msg("Queue processor stopped")
}

func (p *Processor) loop(ctx context.Context) {
	defer close(p.done)
	log.Info().Str("op", "queue/processor").Msg("Queue processor started")
	cycles := 0
	for {
		wait := p.interval
		if err := p.advance(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Str("op", "queue/processor").Msgf("Error advancing queue: %v", err)
			wait = p.backoff
		}
		cycles++
		if cycles >= cleanupCycle {
			p.sweep()
			cycles = 0
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// sweep drops finished jobs older than the configured retention.
func (p *Processor) sweep() {
	p.queue.CleanupOld(p.retention)
}

// advance processes at most one job: claim the FIFO head, run the external
// operation with a progress relay, then record the terminal state. If a job is
// already active or nothing is queued this is a no-op.
func (p *Processor) advance(ctx context.Context) error {
	item, ok := p.queue.startNext()
	if !ok {
		return nil
	}
	log.Info().Str("op", "queue/processor").Msgf("Processing job %s (%s)", item.ID, item.Filename)
	err := p.runner.Run(ctx, item,
		func(handle ProcessHandle) { p.queue.setHandle(item.ID, handle) },
		func(progress float64, status Status) { p.queue.UpdateProgress(item.ID, progress, status) },
	)
	if err != nil {
		if ctx.Err() != nil {
			// Shutdown mid-job: leave the record for load-time correction.
			return ctx.Err()
		}
		p.queue.finish(item.ID, err.Error())
		log.Warn().Str("op", "queue/processor").Msgf("Job %s failed: %v", item.ID, err)
		return nil
	}
	p.queue.finish(item.ID, "")
	log.Info().Str("op", "queue/processor").Msgf("Job %s completed", item.ID)
	return nil
}
