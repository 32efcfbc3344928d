// Package policy implements concrete policies for scripted evaluation
// of environments: a constant policy and a linear policy loadable
// from weight checkpoints.
package policy

import (
	"gonum.org/v1/gonum/mat"

	ts "github.com/armsim/reacharm/timestep"
)

// Constant is a policy that selects the same action on every
// timestep, regardless of observation. With a zero action it is the
// do-nothing policy used to validate environment wiring.
type Constant struct {
	action *mat.VecDense
}

// NewConstant returns a policy that always selects action
func NewConstant(action *mat.VecDense) *Constant {
	return &Constant{action}
}

// NewZero returns a policy that always selects the zero action of the
// given dimensionality
func NewZero(dims int) *Constant {
	return &Constant{mat.NewVecDense(dims, nil)}
}

// SelectAction returns a copy of the constant action
func (c *Constant) SelectAction(t ts.TimeStep) *mat.VecDense {
	return mat.VecDenseCopyOf(c.action)
}
