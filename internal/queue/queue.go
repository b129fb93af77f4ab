// Package queue owns the persistent FIFO of media processing jobs and the
// single-flight worker that drains it. All mutations serialize through one
// mutex so the pop / mark-active / terminal-transition sequence stays atomic
// with respect to concurrent cancels.
package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Advansoftware/m3utostrm/internal/broadcast"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusConverting  Status = "converting"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"
	StatusCancelled   Status = "cancelled"
)

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusCancelled
}

// interruptedMessage is recorded on jobs found mid-flight when the snapshot is
// loaded; jobs never resume across restarts.
const interruptedMessage = "interrupted by application restart"

// DefaultRetention is how long finished jobs stay visible before cleanup.
const DefaultRetention = 7 * 24 * time.Hour

// Item is one media acquisition/conversion job.
type Item struct {
	ID           string     `json:"id"`
	Filename     string     `json:"filename"`
	URL          string     `json:"url"`
	FormatID     string     `json:"format_id"`
	OutputFormat string     `json:"output_format"`
	Status       Status     `json:"status"`
	Progress     float64    `json:"progress"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	Error        string     `json:"error,omitempty"`
}

type snapshot struct {
	Items      []*Item   `json:"items"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// ProcessHandle lets the queue cancel the external process working on the
// active job. The processor registers it for the duration of that job.
type ProcessHandle interface {
	// Terminate asks the process to stop, escalating to a kill after grace.
	Terminate(grace time.Duration) error
	// OutputPath is the partially written output to remove on cancellation.
	OutputPath() string
}

// Queue is the persistent FIFO job store.
type Queue struct {
	mu     sync.Mutex
	items  map[string]*Item
	seq    []string // every id in insertion order
	fifo   []string // pending ids in enqueue order
	active string   // id currently processing, "" when idle
	handle ProcessHandle
	path   string
	sink   broadcast.Sink
}

// New creates a queue persisting to path. A nil sink disables broadcasting.
func New(path string, sink broadcast.Sink) *Queue {
	if sink == nil {
		sink = broadcast.Nop{}
	}
	return &Queue{
		items: make(map[string]*Item),
		path:  path,
		sink:  sink,
	}
}

// Add enqueues a new pending job and returns its id.
func (q *Queue) Add(filename, url, formatID, outputFormat string) string {
	q.mu.Lock()
	item := &Item{
		ID:           uuid.New().String(),
		Filename:     filename,
		URL:          url,
		FormatID:     formatID,
		OutputFormat: outputFormat,
		Status:       StatusPending,
		CreatedAt:    time.Now(),
	}
	q.items[item.ID] = item
	q.seq = append(q.seq, item.ID)
	q.fifo = append(q.fifo, item.ID)
	q.save()
	q.mu.Unlock()
	log.Info().Str("op", "queue/add").Msgf("Enqueued job %s (%s)", item.ID, filename)
	q.broadcastStatus()
	return item.ID
}

// UpdateProgress sets progress (and optionally status) on a job. Unknown ids
// are ignored. Values are relayed as supplied: the queue does not clamp.
func (q *Queue) UpdateProgress(id string, progress float64, status Status) {
	q.mu.Lock()
	item, ok := q.items[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	item.Progress = progress
	if status != "" {
		item.Status = status
	}
	current := item.Status
	q.mu.Unlock()
	q.sink.Notify(broadcast.Event{
		Type: broadcast.EventProgress,
		Data: broadcast.ProgressUpdate{ItemID: id, Progress: progress, Status: string(current)},
	})
}

// Complete marks a job finished, as an error when errMsg is non-empty.
func (q *Queue) Complete(id string, errMsg string) {
	q.mu.Lock()
	item, ok := q.items[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	now := time.Now()
	item.CompletedAt = &now
	if errMsg != "" {
		item.Status = StatusError
		item.Error = errMsg
	} else {
		item.Status = StatusCompleted
	}
	q.save()
	q.mu.Unlock()
	q.broadcastStatus()
}

// Cancel aborts a job. If it is the active one, the external process is
// terminated and its partial output removed. The job ends up cancelled with
// progress 0 either way; cancelling twice is safe.
func (q *Queue) Cancel(id string) {
	q.mu.Lock()
	item, ok := q.items[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	var handle ProcessHandle
	if q.active == id {
		handle = q.handle
		q.handle = nil
		q.active = ""
	}
	now := time.Now()
	item.Status = StatusCancelled
	item.Progress = 0
	item.CompletedAt = &now
	q.fifo = slices.DeleteFunc(q.fifo, func(queued string) bool { return queued == id })
	q.save()
	q.mu.Unlock()

	if handle != nil {
		q.stopProcess(id, handle)
	}
	log.Info().Str("op", "queue/cancel").Msgf("Cancelled job %s", id)
	q.sink.Notify(broadcast.Event{
		Type: broadcast.EventProgress,
		Data: broadcast.ProgressUpdate{ItemID: id, Progress: 0, Status: string(StatusCancelled)},
	})
	q.broadcastStatus()
}

// Status returns a snapshot of every job in insertion order.
func (q *Queue) Status() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.statusLocked()
}

func (q *Queue) statusLocked() []Item {
	items := make([]Item, 0, len(q.seq))
	for _, id := range q.seq {
		items = append(items, *q.items[id])
	}
	return items
}

// CleanupOld drops every job whose completion is older than the retention
// window. The snapshot is rewritten once, and only if something was removed.
func (q *Queue) CleanupOld(retention time.Duration) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	cutoff := time.Now().Add(-retention)
	removed := 0
	for _, id := range slices.Clone(q.seq) {
		item := q.items[id]
		if item.CompletedAt == nil || !item.CompletedAt.Before(cutoff) {
			continue
		}
		delete(q.items, id)
		q.seq = slices.DeleteFunc(q.seq, func(kept string) bool { return kept == id })
		q.fifo = slices.DeleteFunc(q.fifo, func(kept string) bool { return kept == id })
		removed++
	}
	if removed > 0 {
		log.Info().Str("op", "queue/cleanup").Msgf("Removed %d old jobs", removed)
		q.save()
	}
	return removed
}

// Load reads the persisted snapshot. Jobs caught mid-flight by the previous
// shutdown are corrected to error, and pending jobs re-seed the FIFO.
func (q *Queue) Load() error {
	data, err := os.ReadFile(q.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading queue file: %v", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("error parsing queue file: %v", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = make(map[string]*Item, len(snap.Items))
	q.seq = q.seq[:0]
	q.fifo = q.fifo[:0]
	corrected := false
	for _, item := range snap.Items {
		if !item.Status.Terminal() && item.Status != StatusPending {
			now := time.Now()
			item.Status = StatusError
			item.Error = interruptedMessage
			item.CompletedAt = &now
			corrected = true
			log.Warn().Str("op", "queue/load").Msgf("Job %s was interrupted, marking as error", item.ID)
		}
		q.items[item.ID] = item
		q.seq = append(q.seq, item.ID)
		if item.Status == StatusPending {
			q.fifo = append(q.fifo, item.ID)
		}
	}
	if corrected {
		q.save()
	}
	return nil
}

// ReadSnapshot loads the persisted snapshot without touching it: no
// interrupted-job correction, no FIFO re-seeding. Used for read-only views.
func ReadSnapshot(path string) ([]Item, time.Time, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("error reading queue file: %v", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, time.Time{}, fmt.Errorf("error parsing queue file: %v", err)
	}
	items := make([]Item, 0, len(snap.Items))
	for _, item := range snap.Items {
		items = append(items, *item)
	}
	return items, snap.LastUpdate, nil
}

// save persists the whole store. Callers hold the mutex. A write failure is
// logged, not propagated: the in-memory state stays authoritative.
func (q *Queue) save() {
	snap := snapshot{
		Items:      make([]*Item, 0, len(q.seq)),
		LastUpdate: time.Now(),
	}
	for _, id := range q.seq {
		snap.Items = append(snap.Items, q.items[id])
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		log.Error().Str("op", "queue/save").Msgf("Error encoding queue snapshot: %v", err)
		return
	}
	if err := os.WriteFile(q.path, data, 0644); err != nil {
		log.Error().Str("op", "queue/save").Msgf("Error writing queue snapshot: %v", err)
	}
}

func (q *Queue) broadcastStatus() {
	q.mu.Lock()
	items := q.statusLocked()
	q.mu.Unlock()
	q.sink.Notify(broadcast.Event{Type: broadcast.EventQueueStatus, Data: items})
}

// startNext atomically claims the FIFO head for processing. It returns false
// when the queue is empty or another job is already in flight. The head stays
// on the FIFO until its terminal transition so that a crash mid-job leaves it
// discoverable on the next load.
func (q *Queue) startNext() (Item, bool) {
	q.mu.Lock()
	if q.active != "" || len(q.fifo) == 0 {
		q.mu.Unlock()
		return Item{}, false
	}
	id := q.fifo[0]
	item, ok := q.items[id]
	if !ok {
		// Stale id, drop it and try again next tick.
		q.fifo = q.fifo[1:]
		q.mu.Unlock()
		return Item{}, false
	}
	q.active = id
	item.Status = StatusDownloading
	item.Progress = 0
	claimed := *item
	q.save()
	q.mu.Unlock()
	q.sink.Notify(broadcast.Event{
		Type: broadcast.EventProgress,
		Data: broadcast.ProgressUpdate{ItemID: id, Progress: 0, Status: string(StatusDownloading)},
	})
	return claimed, true
}

// stopProcess terminates a job's external process and removes its partial
// output. Called without the mutex held.
func (q *Queue) stopProcess(id string, handle ProcessHandle) {
	if err := handle.Terminate(3 * time.Second); err != nil {
		log.Warn().Str("op", "queue/cancel").Msgf("Error terminating process for %s: %v", id, err)
	}
	if path := handle.OutputPath(); path != "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Str("op", "queue/cancel").Msgf("Error removing partial output %s: %v", path, err)
		}
	}
}

// setHandle registers the cancellation handle for the active job. If the job
// was cancelled between being claimed and the process starting, the handle was
// never visible to Cancel, so the process is stopped right here.
func (q *Queue) setHandle(id string, handle ProcessHandle) {
	q.mu.Lock()
	if q.active == id {
		q.handle = handle
		q.mu.Unlock()
		return
	}
	q.mu.Unlock()
	log.Info().Str("op", "queue/cancel").Msgf("Job %s cancelled before its process registered, stopping it", id)
	q.stopProcess(id, handle)
}

// finish pops the job off the FIFO and records its terminal state. A job
// cancelled while running already left the FIFO; its state is preserved.
func (q *Queue) finish(id string, errMsg string) {
	q.mu.Lock()
	if q.active != id {
		// Cancelled mid-flight; nothing left to transition.
		q.mu.Unlock()
		return
	}
	q.active = ""
	q.handle = nil
	if len(q.fifo) > 0 && q.fifo[0] == id {
		q.fifo = q.fifo[1:]
	}
	q.mu.Unlock()
	q.Complete(id, errMsg)
}
