package entities

// State is a position in the release pipeline lifecycle.
type State string

// Pipeline states in execution order. Done and Failed are terminal; Failed
// absorbs every stage error and has no outgoing transitions.
const (
	StateIdle         State = "idle"
	StateBuilding     State = "building"
	StateValidating   State = "validating"
	StateSigning      State = "signing"
	StatePackaging    State = "packaging"
	StateChecksumming State = "checksumming"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// stageOrder is the only legal forward path through the pipeline.
var stageOrder = []State{
	StateIdle,
	StateBuilding,
	StateValidating,
	StateSigning,
	StatePackaging,
	StateChecksumming,
	StateDone,
}

// Next returns the state that follows s on the success path. Terminal
// states return themselves.
func (s State) Next() State {
	for i, st := range stageOrder {
		if st == s && i+1 < len(stageOrder) {
			return stageOrder[i+1]
		}
	}
	return s
}

// Terminal reports whether the pipeline stops in this state.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransition reports whether moving from s to next is legal: one step
// forward on the success path, or into Failed from any non-terminal state.
func (s State) CanTransition(next State) bool {
	if s.Terminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	return s.Next() == next && next != s
}
