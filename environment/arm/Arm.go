// Package arm implements a two-joint robotic reaching environment.
// An agent controls a planar arm anchored at a fixed base and must
// position the arm's end effector near a target placed in the arm's
// reachable workspace.
//
// State observations are 11-dimensional vectors consisting of the
// following features:
//
//	[
//		cos(θ1)
//		cos(θ2)
//		sin(θ1)
//		sin(θ2)
//		target x
//		target y
//		θ1 angular velocity
//		θ2 angular velocity
//		x distance(effector, target)
//		y distance(effector, target)
//		z distance(effector, target)
//	]
//
// Actions are 2-dimensional continuous vectors, one command per
// joint. In Velocity control mode an action commands joint angular
// velocities; in Position control mode it commands joint angles which
// an internal proportional law tracks. Actions are clipped to stay
// within the declared action bounds before being sent to the
// simulator, but rewards are calculated based on the unclipped
// actions. Out-of-range actions are therefore never an error: the
// policy of this environment is to clip and continue.
//
// The Arm struct satisfies the environment.Environment interface.
package arm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/armsim/reacharm/environment"
	"github.com/armsim/reacharm/environment/arm/internal/armsim"
	ts "github.com/armsim/reacharm/timestep"
	"github.com/armsim/reacharm/utils/floatutils"
)

// ControlMode selects how actions are interpreted by the joint motors
type ControlMode int

const (
	// Velocity control: actions are joint angular velocities
	Velocity ControlMode = iota

	// Position control: actions are joint angles tracked by a
	// proportional law on the joint motors
	Position
)

func (c ControlMode) String() string {
	switch c {
	case Position:
		return "Position"
	default:
		return "Velocity"
	}
}

const (
	// NumActions is the dimensionality of the action vector, one
	// control value per motorised joint
	NumActions int = 2

	// DefaultEpsilon is the closeness threshold used when the
	// configuration does not set one
	DefaultEpsilon float64 = 0.05

	// positionGain is the proportional gain of the Position control
	// tracking law
	positionGain float64 = 5.0

	// planeTolerance is the permitted deviation of a target's z
	// coordinate from the target plane height
	planeTolerance float64 = 1e-6
)

// Config fully describes an Arm environment. Zero values select
// defaults where noted.
type Config struct {
	// RobotPath and TargetPath locate JSON description files for the
	// robot and target. Empty paths select the embedded defaults.
	RobotPath  string
	TargetPath string

	// Timestep is the size of one simulation tick in seconds. Must be
	// positive.
	Timestep float64

	Control ControlMode

	// InitialAngleDeg is the starting pose in degrees, one angle per
	// joint. Nil selects the zero pose.
	InitialAngleDeg []float64

	// RandomInitialPose draws a fresh starting pose uniformly within
	// the joint limits on every reset, overriding InitialAngleDeg
	RandomInitialPose bool

	// InitialTarget is an explicit (x, y, z) starting target
	// position. Nil draws a reachable position from the seeded random
	// stream.
	InitialTarget []float64

	// Reward names the reward variant; validated at construction
	Reward string

	Seed uint64

	// Epsilon is the closeness threshold below which the episode
	// terminates in success. 0 selects DefaultEpsilon.
	Epsilon float64

	// EpisodeCutoff is the step count at which episodes are
	// truncated. 0 leaves episodes unbounded.
	EpisodeCutoff int

	Discount float64
}

// ResetOptions configure a single environment reset
type ResetOptions struct {
	// TargetPosition explicitly places the target at an (x, y, z)
	// point, which must lie in the reachable workspace
	TargetPosition []float64

	// Randomize draws a new reachable target position from the seeded
	// random stream. Without it, the previous (or explicit) target is
	// kept.
	Randomize bool

	// RobotInitialAngleDeg overrides the starting pose for this
	// episode
	RobotInitialAngleDeg []float64

	// Epsilon overrides the closeness threshold for this episode
	// only. 0 keeps the configured threshold.
	Epsilon float64
}

// Arm implements the two-joint reaching environment. It owns the
// physics-simulation session exclusively and releases it on Close.
type Arm struct {
	env.Task

	reach   *Reach
	session *armsim.Session
	kin     Kinematics

	control       ControlMode
	discount      float64
	initialAngles []float64 // radians
	poseStarter   env.Starter

	obsLen          int
	currentTimeStep ts.TimeStep
	ready           bool
	closed          bool
}

// New returns a new Arm environment along with its first timestep.
// New opens the process-wide physics-simulation session; the returned
// environment must be closed before another can be constructed.
func New(c Config) (*Arm, ts.TimeStep, error) {
	robot, target, err := loadDescriptions(c)
	if err != nil {
		return nil, ts.TimeStep{}, err
	}

	// Shrinking the reachable annulus by the target radius must leave
	// room to place targets, or goal sampling could never produce one
	if robot.MinReach()+target.Radius >= robot.MaxReach()-target.Radius {
		return nil, ts.TimeStep{}, env.Configf("new", "target radius %v "+
			"leaves no placement inside the reachable annulus [%v, %v]",
			target.Radius, robot.MinReach(), robot.MaxReach())
	}

	epsilon := c.Epsilon
	if epsilon == 0 {
		epsilon = DefaultEpsilon
	}

	// Validate the reward variant before opening the session so an
	// unknown name fails without holding the session slot
	reach, err := NewReach(c.Reward, c.Seed, c.EpisodeCutoff, epsilon)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
	}

	initialAngles, err := anglesFromDegrees(c.InitialAngleDeg,
		len(robot.Joints))
	if err != nil {
		return nil, ts.TimeStep{}, err
	}

	session, err := armsim.NewSession(robot, target, c.Timestep)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
	}

	a := &Arm{
		Task:    reach,
		reach:   reach,
		session: session,
		kin: Kinematics{
			L1:     robot.Links[0].Length,
			L2:     robot.Links[1].Length,
			Height: robot.EffectorHeight,
		},
		control:       c.Control,
		discount:      c.Discount,
		initialAngles: initialAngles,
		obsLen:        4*len(robot.Joints) + 3,
	}
	if c.RandomInitialPose {
		bounds := make([]r1.Interval, len(robot.Joints))
		for i, joint := range robot.Joints {
			bounds[i] = r1.Interval{Min: joint.Limit[0], Max: joint.Limit[1]}
		}
		a.poseStarter = env.NewUniformStarter(bounds, c.Seed)
	}
	reach.register(a)

	if c.InitialTarget != nil {
		if err := a.SetTargetPosition(mat.NewVecDense(len(c.InitialTarget),
			c.InitialTarget)); err != nil {
			a.Close()
			return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
		}
	} else {
		x, y := reach.nextGoal()
		if err := session.MoveTarget(x, y); err != nil {
			a.Close()
			return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
		}
	}

	firstStep, err := a.Reset()
	if err != nil {
		a.Close()
		return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
	}
	return a, firstStep, nil
}

func loadDescriptions(c Config) (*armsim.RobotDescription,
	*armsim.TargetDescription, error) {
	var robot *armsim.RobotDescription
	var target *armsim.TargetDescription
	var err error

	if c.RobotPath == "" {
		robot = armsim.DefaultRobotDescription()
	} else if robot, err = armsim.LoadRobotDescription(c.RobotPath); err != nil {
		return nil, nil, err
	}

	if c.TargetPath == "" {
		target = armsim.DefaultTargetDescription()
	} else if target, err = armsim.LoadTargetDescription(c.TargetPath); err != nil {
		return nil, nil, err
	}

	return robot, target, nil
}

func anglesFromDegrees(deg []float64, numJoints int) ([]float64, error) {
	if deg == nil {
		return make([]float64, numJoints), nil
	}
	if len(deg) != numJoints {
		return nil, env.Configf("new", "initial pose has %v angles for %v "+
			"joints", len(deg), numJoints)
	}

	angles := make([]float64, numJoints)
	for i, d := range deg {
		angles[i] = d * math.Pi / 180.0
	}
	return angles, nil
}

// Reset resets the environment to begin a new episode, keeping the
// current target position and configured starting pose
func (a *Arm) Reset() (ts.TimeStep, error) {
	return a.ResetOpts(ResetOptions{})
}

// ResetOpts resets the environment to begin a new episode with the
// given options. The step counter returns to zero and termination
// flags are cleared. Given a fixed seed, resets are deterministic:
// without Randomize the same options always produce the same
// observation, and with Randomize the sequence of drawn targets is
// reproducible run-over-run.
func (a *Arm) ResetOpts(opts ResetOptions) (ts.TimeStep, error) {
	if a.closed {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", env.ErrInvalidState)
	}

	a.reach.setEpsilon(opts.Epsilon)

	var angles []float64
	if opts.RobotInitialAngleDeg != nil {
		var err error
		angles, err = anglesFromDegrees(opts.RobotInitialAngleDeg,
			a.session.NumJoints())
		if err != nil {
			return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
		}
	} else if a.poseStarter != nil {
		angles = a.poseStarter.Start().RawVector().Data
	} else {
		start := a.reach.Start()
		angles = start.RawVector().Data[:a.session.NumJoints()]
	}

	err := a.session.SetJointState(angles,
		make([]float64, a.session.NumJoints()))
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}

	if opts.TargetPosition != nil {
		target := mat.NewVecDense(len(opts.TargetPosition),
			opts.TargetPosition)
		if err := a.SetTargetPosition(target); err != nil {
			return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
		}
	} else if opts.Randomize {
		x, y := a.reach.nextGoal()
		if err := a.session.MoveTarget(x, y); err != nil {
			return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
		}
	}

	firstStep := ts.New(ts.First, 0, a.discount, a.getObs(), 0)
	a.currentTimeStep = firstStep
	a.ready = true

	return firstStep, nil
}

// Step takes one environmental step given some action. The action is
// clipped to the declared bounds, applied to the joint motors, and
// the simulation advances exactly one tick. The returned boolean
// reports whether the timestep is the last in the episode; its
// EndType distinguishes success from truncation.
func (a *Arm) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if a.closed || !a.ready {
		return ts.TimeStep{}, true, fmt.Errorf("step: %w",
			env.ErrInvalidState)
	}

	state := a.effectorVec()

	clipped := a.clipAction(action)
	control, err := a.motorControl(clipped)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %w", err)
	}

	if err := a.session.Step(control); err != nil {
		// Simulation divergence is fatal to the episode; faking a
		// fallback state here would corrupt training data
		return ts.TimeStep{}, true, fmt.Errorf("step: %w", err)
	}

	nextState := a.effectorVec()
	reward := a.GetReward(state, action, nextState)

	t := ts.New(ts.Mid, reward, a.discount, a.getObs(),
		a.currentTimeStep.Number+1)
	done := a.End(&t)
	a.currentTimeStep = t

	return t, done, nil
}

// motorControl converts a clipped action into joint motor speeds
// according to the control mode
func (a *Arm) motorControl(action *mat.VecDense) ([]float64, error) {
	control := make([]float64, action.Len())

	switch a.control {
	case Velocity:
		for i := range control {
			control[i] = action.AtVec(i)
		}

	case Position:
		pos, _ := a.session.JointState()
		for i := range control {
			maxSpeed := a.session.Robot().Joints[i].MaxSpeed
			control[i] = floatutils.Clip(
				positionGain*(action.AtVec(i)-pos[i]),
				-maxSpeed, maxSpeed)
		}

	default:
		return nil, fmt.Errorf("motorControl: no such control mode %v",
			a.control)
	}
	return control, nil
}

// clipAction returns a copy of the argument action which is clipped
// to be within the action bounds of the environment
func (a *Arm) clipAction(action *mat.VecDense) *mat.VecDense {
	spec := a.ActionSpec()
	min := spec.LowerBound
	max := spec.UpperBound

	clipped := mat.VecDenseCopyOf(action)

	for i := 0; i < clipped.Len(); i++ {
		clipped.SetVec(i, floatutils.Clip(clipped.AtVec(i), min.AtVec(i),
			max.AtVec(i)))
	}

	return clipped
}

// SetTargetPosition overrides the target position outside the reset
// cycle, leaving the step counter and joint state untouched. The
// point must lie in the reachable workspace and on the target plane;
// otherwise environment.ErrOutOfRange is returned.
func (a *Arm) SetTargetPosition(target *mat.VecDense) error {
	if a.closed {
		return fmt.Errorf("setTargetPosition: %w", env.ErrInvalidState)
	}
	if target.Len() != 3 {
		return fmt.Errorf("setTargetPosition: target should be (x, y, z) "+
			"coordinates, got length %v", target.Len())
	}

	x, y, z := target.AtVec(0), target.AtVec(1), target.AtVec(2)
	if !a.kin.Reachable(x, y) {
		return fmt.Errorf("setTargetPosition: (%v, %v) outside reachable "+
			"workspace: %w", x, y, env.ErrOutOfRange)
	}
	if math.Abs(z-a.session.Target().Height) > planeTolerance {
		return fmt.Errorf("setTargetPosition: height %v off the target "+
			"plane %v: %w", z, a.session.Target().Height, env.ErrOutOfRange)
	}

	return a.session.MoveTarget(x, y)
}

// Close releases the physics-simulation session. Close is idempotent:
// closing an already-closed environment does nothing and returns nil.
func (a *Arm) Close() error {
	a.closed = true
	a.ready = false
	return a.session.Close()
}

// CurrentTimeStep returns the current timestep of the environment
func (a *Arm) CurrentTimeStep() ts.TimeStep {
	return a.currentTimeStep
}

// EffectorPosition returns the current (x, y, z) position of the end
// effector, recomputed from the simulation state
func (a *Arm) EffectorPosition() *mat.VecDense {
	return a.effectorVec()
}

// TargetPosition returns the current (x, y, z) position of the target
func (a *Arm) TargetPosition() *mat.VecDense {
	return a.targetVec()
}

// Distance returns the current Euclidean distance between the end
// effector and the target
func (a *Arm) Distance() float64 {
	diff := a.effectorVec()
	diff.SubVec(diff, a.targetVec())
	return mat.Norm(diff, 2.0)
}

// Kinematics returns the arm's kinematics helper
func (a *Arm) Kinematics() Kinematics {
	return a.kin
}

func (a *Arm) effectorVec() *mat.VecDense {
	return mat.NewVecDense(3, a.session.EffectorPosition())
}

func (a *Arm) targetVec() *mat.VecDense {
	return mat.NewVecDense(3, a.session.TargetPosition())
}

// getObs returns a state observation
func (a *Arm) getObs() *mat.VecDense {
	pos, vel := a.session.JointState()
	target := a.session.TargetPosition()
	effector := a.session.EffectorPosition()

	cosTheta := floatutils.PreserveApply(pos, math.Cos)
	sinTheta := floatutils.Apply(pos, math.Sin)

	n := len(pos)
	obs := make([]float64, a.obsLen)
	copy(obs[:n], cosTheta)
	copy(obs[n:2*n], sinTheta)
	copy(obs[2*n:2*n+2], target[:2])
	copy(obs[2*n+2:3*n+2], vel)
	for i := range effector {
		obs[a.obsLen-3+i] = effector[i] - target[i]
	}

	return mat.NewVecDense(a.obsLen, obs)
}

// ObservationSpec returns the observation specification of the
// environment
func (a *Arm) ObservationSpec() env.Spec {
	shape := mat.NewVecDense(a.obsLen, nil)

	low := mat.NewVecDense(a.obsLen, nil)
	high := mat.NewVecDense(a.obsLen, nil)
	for i := 0; i < low.Len(); i++ {
		low.SetVec(i, math.Inf(-1))
		high.SetVec(i, math.Inf(1))
	}

	return env.NewSpec(shape, env.Observation, low, high, env.Continuous)
}

// ActionSpec returns the action specification of the environment. In
// Velocity mode actions are bounded by the joints' maximum speeds; in
// Position mode by the joints' angle limits.
func (a *Arm) ActionSpec() env.Spec {
	joints := a.session.Robot().Joints
	n := len(joints)

	low := mat.NewVecDense(n, nil)
	high := mat.NewVecDense(n, nil)
	for i, joint := range joints {
		switch a.control {
		case Position:
			low.SetVec(i, joint.Limit[0])
			high.SetVec(i, joint.Limit[1])
		default:
			low.SetVec(i, -joint.MaxSpeed)
			high.SetVec(i, joint.MaxSpeed)
		}
	}

	shape := mat.NewVecDense(n, nil)
	return env.NewSpec(shape, env.Action, low, high, env.Continuous)
}

// DiscountSpec returns the discount specification of the environment
func (a *Arm) DiscountSpec() env.Spec {
	bounds := mat.NewVecDense(1, []float64{a.discount})

	return env.NewSpec(mat.NewVecDense(1, nil), env.Discount, bounds,
		bounds, env.Continuous)
}
