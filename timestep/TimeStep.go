// Package timestep implements timesteps of the agent-environment
// interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be: the first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType denotes the reason an episode ended. An episode may end
// because the task was solved (TerminalStateReached) or because a
// timestep limit was hit (Timeout). A TimeStep carries exactly one
// EndType, so the two ending reasons are mutually exclusive.
type EndType int

const (
	// Nil indicates that the episode has not ended
	Nil EndType = iota

	// TerminalStateReached indicates that the episode ended because
	// the environment reached a goal state
	TerminalStateReached

	// Timeout indicates that the episode ended due to a step limit,
	// not due to task success
	Timeout
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	default:
		return "Nil"
	}
}

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	StepType    StepType
	Reward      float64
	Discount    float64
	Observation mat.Vector
	Number      int
	endType     EndType
}

// New returns a new TimeStep with no end type set
func New(t StepType, r, d float64, o mat.Vector, n int) TimeStep {
	return TimeStep{t, r, d, o, n, Nil}
}

// SetEnd records the reason the episode ended on a last timestep
func (t *TimeStep) SetEnd(e EndType) {
	t.endType = e
}

// End returns the reason the episode ended, or Nil if it has not
func (t TimeStep) End() EndType {
	return t.endType
}

// First returns whether a TimeStep is the first in an episode
func (t TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an episode
func (t TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an episode
func (t TimeStep) Last() bool {
	return t.StepType == Last
}

// Terminated returns whether the episode ended in task success
func (t TimeStep) Terminated() bool {
	return t.StepType == Last && t.endType == TerminalStateReached
}

// Truncated returns whether the episode ended due to a step limit
func (t TimeStep) Truncated() bool {
	return t.StepType == Last && t.endType == Timeout
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number)
}
