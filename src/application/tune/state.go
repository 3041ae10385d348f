// Package tune contains the health monitor and the conservative
// auto-tuner. Philosophy: stability over reactivity. At most two
// configuration adjustments in any rolling 24h window, a 50-signal
// minimum observation window, and one bounded step per adjustment.
package tune

import (
	"time"

	"github.com/MohammedBenaboud/Alphaseeker/src/internal/ring"
)

// RollingWindowCapacity caps the retained outcome history.
const RollingWindowCapacity = 100

// AccuracyWindow is how many recent outcomes feed the accuracy metric.
const AccuracyWindow = 50

// State is the tuner's memory, owned by the host loop. Every function
// in this package treats it as input and returns a new value.
type State struct {
	LastAdjustmentTime       time.Time
	AdjustmentsToday         int
	WindowStartTime          time.Time
	SignalsProcessedInWindow int

	// rollingAccuracy holds 1 for win, 0 for loss, bounded at
	// RollingWindowCapacity with oldest-first eviction.
	rollingAccuracy *ring.Buffer[int]
}

// NewState initializes tuner state at the start of a 24h window.
func NewState(now time.Time) State {
	return State{
		WindowStartTime: now,
		rollingAccuracy: ring.New[int](RollingWindowCapacity),
	}
}

// IngestOutcome records one realized trade outcome. Called once per
// closed (simulated or real) trade by the host loop.
func IngestOutcome(s State, isWin bool) State {
	next := s
	next.rollingAccuracy = s.outcomes().Clone()

	v := 0
	if isWin {
		v = 1
	}
	next.rollingAccuracy.Push(v)
	next.SignalsProcessedInWindow++
	return next
}

// RecentOutcomes returns up to n most recent outcomes, oldest-first.
func (s State) RecentOutcomes(n int) []int {
	return s.outcomes().Last(n)
}

// OutcomeCount returns the number of retained outcomes.
func (s State) OutcomeCount() int {
	return s.outcomes().Len()
}

func (s State) outcomes() *ring.Buffer[int] {
	if s.rollingAccuracy == nil {
		return ring.New[int](RollingWindowCapacity)
	}
	return s.rollingAccuracy
}
