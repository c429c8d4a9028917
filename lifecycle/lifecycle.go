// Package lifecycle implements the Lifecycle Store (component J): an
// in-memory, per-process record of each decision's progress through the
// pipeline, plus the per-record event notification SSE handlers subscribe
// to. Nothing here is persisted across a restart — decisions are
// re-submitted, not resumed.
package lifecycle

import (
	"fmt"
	"sync"
	"time"

	"decisiongov/platform/pack"
)

// Status is a decision's position in the pipeline.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
)

// Step 4 is the terminal processing step; step 0-3 run in sequence before
// it (extract, evaluate, reason, build pack).
const terminalStep = 4

// Event is published to subscribers every time a record changes.
type Event struct {
	DecisionID string `json:"decision_id"`
	Status     Status `json:"status"`
	Step       int    `json:"step"`
	Label      string `json:"label,omitempty"`
	Message    string `json:"message,omitempty"`
}

// stepLabels/stepMessages name each pipeline step for display in the SSE
// stream, keyed by the step number Advance is called with.
var stepLabels = map[int]string{
	0: "extract",
	1: "evaluate",
	2: "reason",
	3: "build_pack",
	4: "complete",
}

var stepMessages = map[int]string{
	0: "Extracting structured decision from the submitted text",
	1: "Evaluating governance rules and computing the approval chain",
	2: "Building the decision subgraph and reasoning over its context",
	3: "Assembling the decision pack",
	4: "Decision pack complete",
}

// Record is one decision's lifecycle state.
type Record struct {
	ID        string
	TenantID  string
	CreatedAt time.Time

	mu          sync.RWMutex
	status      Status
	step        int
	pack        *pack.Pack
	errMessage  string
	subscribers map[chan Event]struct{}
}

// Status returns the record's current status.
func (r *Record) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Step returns the record's current step.
func (r *Record) Step() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.step
}

// Pack returns the completed pack, or nil if not yet complete.
func (r *Record) Pack() *pack.Pack {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pack
}

// Error returns the failure message, if any.
func (r *Record) Error() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.errMessage
}

// Advance moves the record to step with the given status. step must be
// strictly greater than the current step, except for the first move out
// of pending, which may keep the record's current step (a new record
// starts at step 0 and the pipeline's first stage is step 0); Advance
// panics on a regression, since that indicates a pipeline bug rather than
// recoverable user input.
func (r *Record) Advance(status Status, step int) {
	r.mu.Lock()
	leavingPending := r.status == StatusPending && step == r.step
	if step <= r.step && status != StatusFailed && !leavingPending {
		r.mu.Unlock()
		panic(fmt.Sprintf("lifecycle: non-monotonic step transition for %s: %d -> %d", r.ID, r.step, step))
	}
	r.status = status
	r.step = step
	r.mu.Unlock()
	r.publish()
}

// Complete marks the record done with its final pack.
func (r *Record) Complete(p *pack.Pack) {
	r.mu.Lock()
	r.status = StatusComplete
	r.step = terminalStep
	r.pack = p
	r.mu.Unlock()
	r.publish()
}

// Fail marks the record terminally failed. Failure is terminal regardless
// of current step — it does not have to respect step monotonicity since
// it can happen at any stage.
func (r *Record) Fail(err error) {
	r.mu.Lock()
	r.status = StatusFailed
	r.errMessage = err.Error()
	r.mu.Unlock()
	r.publish()
}

func (r *Record) publish() {
	r.mu.RLock()
	ev := Event{
		DecisionID: r.ID,
		Status:     r.status,
		Step:       r.step,
		Label:      stepLabels[r.step],
		Message:    stepMessages[r.step],
	}
	subs := make([]chan Event, 0, len(r.subscribers))
	for ch := range r.subscribers {
		subs = append(subs, ch)
	}
	r.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop the event rather than block the
			// pipeline goroutine that called Advance/Complete/Fail.
		}
	}
}

// Subscribe registers a channel that receives subsequent Advance, Complete
// or Fail events. The channel buffers 8 events; an event published while
// the buffer is full is dropped for that subscriber. The returned function
// deregisters it; callers
// must call it when done (typically via defer in the SSE handler).
func (r *Record) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)
	r.mu.Lock()
	if r.subscribers == nil {
		r.subscribers = make(map[chan Event]struct{})
	}
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()

	unsubscribe := func() {
		r.mu.Lock()
		delete(r.subscribers, ch)
		r.mu.Unlock()
		close(ch)
	}
	return ch, unsubscribe
}

// Store holds every decision Record for the lifetime of the process.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{records: make(map[string]*Record)}
}

// Create registers a new pending Record for decisionID.
func (s *Store) Create(decisionID, tenantID string) *Record {
	r := &Record{
		ID:        decisionID,
		TenantID:  tenantID,
		CreatedAt: time.Now(),
		status:    StatusPending,
	}
	s.mu.Lock()
	s.records[decisionID] = r
	s.mu.Unlock()
	return r
}

// Get returns the Record for decisionID, or false if it does not exist.
func (s *Store) Get(decisionID string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[decisionID]
	return r, ok
}
