package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"decisiongov/platform/lifecycle"
)

// ssePacingFloor is the minimum interval between events flushed to the
// client, smoothing out bursts of rapid lifecycle transitions into a
// steadier visual progression for a human watching the stream.
const ssePacingFloor = 500 * time.Millisecond

// handleStreamDecision serves a decision's lifecycle as Server-Sent
// Events until it reaches a terminal state (complete/failed) or the
// client disconnects.
func (s *Server) handleStreamDecision(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	record, ok := s.Lifecycle.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "decision not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	events, unsubscribe := record.Subscribe()
	defer unsubscribe()

	writeEvent(w, flusher, record, lifecycle.Event{DecisionID: id, Status: record.Status(), Step: record.Step()})
	if terminal(record.Status()) {
		return
	}

	lastSent := time.Now()
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if wait := ssePacingFloor - time.Since(lastSent); wait > 0 {
				time.Sleep(wait)
			}
			writeEvent(w, flusher, record, ev)
			lastSent = time.Now()
			if terminal(ev.Status) {
				return
			}
		}
	}
}

func terminal(status lifecycle.Status) bool {
	return status == lifecycle.StatusComplete || status == lifecycle.StatusFailed
}

// sseStepEvent, sseCompleteEvent and sseErrorEvent are the three wire
// shapes the stream emits — a distinct shape per event name rather than
// one struct with fields that are meaningless for the other two events.
type sseStepEvent struct {
	DecisionID string `json:"decision_id"`
	Step       int    `json:"step"`
	Label      string `json:"label"`
	Message    string `json:"message"`
}

type sseCompleteEvent struct {
	DecisionID string `json:"decision_id"`
	Status     string `json:"status"`
	ResultURL  string `json:"result_url"`
}

type sseErrorEvent struct {
	DecisionID string `json:"decision_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// writeEvent renders one lifecycle transition as an SSE frame. In-progress
// transitions are event "step" (decision_id/step/label/message); the
// terminal transitions are "complete" and "error", each with their own
// minimal, status-specific shape.
func writeEvent(w http.ResponseWriter, flusher http.Flusher, record *lifecycle.Record, ev lifecycle.Event) {
	var name string
	var payload interface{}

	switch ev.Status {
	case lifecycle.StatusComplete:
		name = "complete"
		payload = sseCompleteEvent{
			DecisionID: ev.DecisionID,
			Status:     "complete",
			ResultURL:  fmt.Sprintf("/v1/decisions/%s", ev.DecisionID),
		}
	case lifecycle.StatusFailed:
		name = "error"
		payload = sseErrorEvent{
			DecisionID: ev.DecisionID,
			Status:     "failed",
			Message:    record.Error(),
		}
	default:
		name = "step"
		payload = sseStepEvent{
			DecisionID: ev.DecisionID,
			Step:       ev.Step,
			Label:      ev.Label,
			Message:    ev.Message,
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	flusher.Flush()
}
