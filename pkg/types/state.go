// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SourceState is the lifecycle position of one topic or news category
// within a run.
type SourceState string

const (
	StatePending   SourceState = "pending"
	StateFetching  SourceState = "fetching"
	StateParsing   SourceState = "parsing"
	StateFiltering SourceState = "filtering"
	StateDone      SourceState = "done"
	StateFallback  SourceState = "fallback"
)

// Terminal reports whether no further transition is possible.
func (s SourceState) Terminal() bool {
	return s == StateDone || s == StateFallback
}

// StateTracker receives state transitions for a source key. Ingesters
// report fetching, parsing and filtering; the orchestrator reports the
// terminal state.
type StateTracker interface {
	Transition(key string, to SourceState)
}

// NopTracker discards transitions.
type NopTracker struct{}

// Transition implements StateTracker.
func (NopTracker) Transition(string, SourceState) {}
