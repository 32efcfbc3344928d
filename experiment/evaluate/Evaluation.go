package evaluate

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/armsim/reacharm/agent"
	env "github.com/armsim/reacharm/environment"
	"github.com/armsim/reacharm/experiment/trackers"
	ts "github.com/armsim/reacharm/timestep"
)

// TargetEnvironment is the capability set the evaluation harness
// needs from an environment: the standard environment contract plus
// direct control over the target position
type TargetEnvironment interface {
	env.Environment

	// SetTargetPosition moves the target without resetting the
	// episode
	SetTargetPosition(*mat.VecDense) error

	// TargetPosition returns the current (x, y, z) target position
	TargetPosition() *mat.VecDense

	// Distance returns the current effector-to-target distance
	Distance() float64
}

// Result aggregates the per-target final errors of one evaluation run
type Result struct {
	// FinalErrors holds the final distance-to-target for each sampled
	// trajectory point, in trajectory order
	FinalErrors []float64

	// Mean and StdDev of FinalErrors: the comparison metric between
	// trained checkpoints
	Mean   float64
	StdDev float64
}

// Evaluation is a deterministic, scripted driver used to score a
// frozen policy. For each point of a sampled trajectory it sets the
// point as the current target, steps the environment under the policy
// until success or a per-target step ceiling, and records the final
// distance-to-target.
//
// The environment's own episode cutoff should be unbounded during
// evaluation; the harness bounds each target with its own ceiling.
type Evaluation struct {
	env               TargetEnvironment
	policy            agent.Policy
	maxStepsPerTarget int
	trackers          []trackers.Tracker
}

// New returns a new Evaluation of policy on e, running at most
// maxStepsPerTarget steps for each trajectory point
func New(e TargetEnvironment, policy agent.Policy, maxStepsPerTarget int,
	t ...trackers.Tracker) (*Evaluation, error) {
	if maxStepsPerTarget <= 0 {
		return nil, fmt.Errorf("newEvaluation: maxStepsPerTarget must be "+
			"positive, got %v", maxStepsPerTarget)
	}
	return &Evaluation{e, policy, maxStepsPerTarget, t}, nil
}

// SetPolicy swaps the policy under evaluation, keeping the
// environment and trajectory machinery
func (e *Evaluation) SetPolicy(policy agent.Policy) {
	e.policy = policy
}

// Register registers a Tracker with the Evaluation so that data
// generated while scoring can be tracked and saved
func (e *Evaluation) Register(t trackers.Tracker) {
	e.trackers = append(e.trackers, t)
}

// Run drives the policy through every trajectory point and returns
// the aggregated final errors
func (e *Evaluation) Run(points [][2]float64) (Result, error) {
	if len(points) == 0 {
		return Result{}, fmt.Errorf("run: no trajectory points")
	}

	height := e.env.TargetPosition().AtVec(2)

	finalErrors := make([]float64, 0, len(points))
	for i, point := range points {
		target := mat.NewVecDense(3, []float64{point[0], point[1], height})
		if err := e.env.SetTargetPosition(target); err != nil {
			return Result{}, fmt.Errorf("run: trajectory point %v: %v", i,
				err)
		}

		step := e.env.CurrentTimeStep()
		for n := 0; n < e.maxStepsPerTarget; n++ {
			action := e.policy.SelectAction(step)

			var done bool
			var err error
			step, done, err = e.env.Step(action)
			if err != nil {
				return Result{}, fmt.Errorf("run: trajectory point %v: %v",
					i, err)
			}
			e.track(step)

			if done {
				break
			}
		}

		finalErrors = append(finalErrors, e.env.Distance())
	}

	return Result{
		FinalErrors: finalErrors,
		Mean:        stat.Mean(finalErrors, nil),
		StdDev:      stat.StdDev(finalErrors, nil),
	}, nil
}

// Save saves all the data cached by the registered Trackers to disk
func (e *Evaluation) Save() {
	for _, tracker := range e.trackers {
		tracker.Save()
	}
}

// track caches the current timestep's data in each tracker
func (e *Evaluation) track(t ts.TimeStep) {
	for _, tracker := range e.trackers {
		tracker.Track(t)
	}
}
