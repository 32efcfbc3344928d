// Package agent defines the policy interface bound to environments.
//
// Training itself is performed by an external, environment-agnostic
// optimizer; this package only defines how a (possibly frozen) policy
// selects actions, which is all the evaluation harness needs.
package agent

import (
	"gonum.org/v1/gonum/mat"

	"github.com/armsim/reacharm/timestep"
)

// Policy represents a policy mapping timesteps to actions.
//
// Policies must be safe to query repeatedly: SelectAction does not
// mutate the environment, only reads the observation carried by the
// timestep.
type Policy interface {
	SelectAction(t timestep.TimeStep) *mat.VecDense
}
