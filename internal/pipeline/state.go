// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"log/slog"
	"sync"

	"github.com/pdiddy/research-digest/pkg/types"
)

var stateRank = map[types.SourceState]int{
	types.StatePending:   0,
	types.StateFetching:  1,
	types.StateParsing:   2,
	types.StateFiltering: 3,
	types.StateDone:      4,
	types.StateFallback:  4,
}

// Tracker holds the current state of every source in a run. States only
// move forward and a terminal state is final; other transitions are
// ignored.
type Tracker struct {
	mu     sync.Mutex
	states map[string]types.SourceState
	logger *slog.Logger
}

// NewTracker returns an empty tracker.
func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{states: map[string]types.SourceState{}, logger: logger}
}

// Register puts key in the pending state.
func (t *Tracker) Register(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[key] = types.StatePending
}

// Transition implements types.StateTracker.
func (t *Tracker) Transition(key string, to types.SourceState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	from, ok := t.states[key]
	if !ok {
		from = types.StatePending
	}
	toRank, known := stateRank[to]
	if !known || from.Terminal() || toRank <= stateRank[from] {
		t.logger.Debug("ignoring state transition", "source", key, "from", from, "to", to)
		return
	}
	t.states[key] = to
	t.logger.Debug("state", "source", key, "from", from, "to", to)
}

// State returns the current state of key, pending when unknown.
func (t *Tracker) State(key string) types.SourceState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.states[key]; ok {
		return s
	}
	return types.StatePending
}
