package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceIsMonotonic(t *testing.T) {
	s := NewStore()
	r := s.Create("dec1", "tenant1")
	r.Advance(StatusProcessing, 1)
	r.Advance(StatusProcessing, 2)

	defer func() {
		assert.NotNil(t, recover(), "expected panic on non-monotonic step regression")
	}()
	r.Advance(StatusProcessing, 1)
}

func TestCompleteSetsTerminalStep(t *testing.T) {
	s := NewStore()
	r := s.Create("dec1", "tenant1")
	r.Advance(StatusProcessing, 1)
	r.Complete(nil)
	assert.Equal(t, StatusComplete, r.Status())
	assert.Equal(t, terminalStep, r.Step())
}

func TestFailSetsErrorMessage(t *testing.T) {
	s := NewStore()
	r := s.Create("dec1", "tenant1")
	r.Fail(errors.New("boom"))
	assert.Equal(t, StatusFailed, r.Status())
	assert.Equal(t, "boom", r.Error())
}

func TestSubscribeReceivesEvents(t *testing.T) {
	s := NewStore()
	r := s.Create("dec1", "tenant1")
	ch, unsubscribe := r.Subscribe()
	defer unsubscribe()

	r.Advance(StatusProcessing, 1)

	select {
	case ev := <-ch:
		assert.Equal(t, 1, ev.Step)
		assert.Equal(t, StatusProcessing, ev.Status)
	case <-time.After(time.Second):
		t.Fatal("expected event within timeout")
	}
}

func TestGetMissingRecord(t *testing.T) {
	s := NewStore()
	_, ok := s.Get("nope")
	require.False(t, ok)
}
