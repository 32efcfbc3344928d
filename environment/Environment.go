// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	ts "github.com/armsim/reacharm/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when and how episodes end. An Ender inspects each
// TimeStep and, if the episode should end, modifies the TimeStep so
// that its StepType is timestep.Last and its EndType reflects the
// reason for ending.
type Ender interface {
	End(*ts.TimeStep) bool
}

// Task implements the reward scheme and episode boundaries for acting
// in some environment. Tasks are registered with their environment at
// construction time and must be pure with respect to rewards: the
// same transition always produces the same scalar.
type Task interface {
	Starter
	Ender

	// GetReward returns the reward for a (state, action, nextState)
	// transition
	GetReward(state, action, nextState mat.Vector) float64

	// AtGoal returns whether the argument state is a goal state
	AtGoal(state mat.Matrix) bool

	// Min and Max return the minimum and maximum attainable rewards
	Min() float64
	Max() float64

	RewardSpec() Spec
}

// Environment implements a simulated environment, which includes a
// Task to complete.
//
// The observation and action Specs of an Environment are declared once
// at construction and never change over the Environment's lifetime.
// Step returns the resulting TimeStep and whether that TimeStep is the
// last in the episode; the TimeStep's EndType distinguishes ending in
// task success (timestep.TerminalStateReached) from ending at a step
// limit (timestep.Timeout).
type Environment interface {
	Task

	// Reset resets the environment between episodes
	Reset() (ts.TimeStep, error)

	// Step takes one environmental step with the given action
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)

	// CurrentTimeStep returns the last timestep of the environment
	CurrentTimeStep() ts.TimeStep

	// Close releases the simulation resources held by the
	// environment. Close is idempotent.
	Close() error

	RewardSpec() Spec
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
