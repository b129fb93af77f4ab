// Package broadcast defines the fan-out boundary between the processing core and
// whatever transport delivers events to subscribed clients. The core only holds a
// Sink; it never enumerates live connections itself.
package broadcast

// Event is a single fire-and-forget notification. Data is marshaled as-is by the
// transport, so producers attach ready-to-serialize values.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const (
	EventQueueStatus = "queue_status"
	EventProgress    = "progress"
)

// ProgressUpdate is the payload for EventProgress events.
type ProgressUpdate struct {
	ItemID   string  `json:"item_id"`
	Progress float64 `json:"progress"`
	Status   string  `json:"status"`
}

// Sink receives events. Delivery is best-effort: implementations must not block
// the caller and must swallow their own delivery failures.
type Sink interface {
	Notify(event Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(Event) {}

// Func adapts a function to the Sink interface.
type Func func(Event)

func (f Func) Notify(event Event) {
	f(event)
}
