package arm

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"

	env "github.com/armsim/reacharm/environment"
	ts "github.com/armsim/reacharm/timestep"
)

// Names of the built-in reward variants
const (
	RewardZero     string = "reward_0"
	RewardDistance string = "reward_1"
)

// RewardFunc maps an effector position and a target position to a
// scalar reward. Reward functions must be pure: identical inputs
// always produce identical outputs, with no side effects and no
// hidden state.
type RewardFunc func(effector, target mat.Vector) float64

var rewardRegistry = map[string]RewardFunc{
	// Always-zero reward, used to validate wiring before training
	RewardZero: func(_, _ mat.Vector) float64 {
		return 0.0
	},

	// Negative Euclidean distance between effector and target.
	// Strictly closer effector positions receive strictly greater
	// reward.
	RewardDistance: func(effector, target mat.Vector) float64 {
		diff := mat.NewVecDense(effector.Len(), nil)
		diff.SubVec(effector, target)
		return -mat.Norm(diff, 2.0)
	},
}

// RegisterReward adds a named reward variant to the registry. It is an
// error to re-register an existing name.
func RegisterReward(name string, f RewardFunc) error {
	if _, ok := rewardRegistry[name]; ok {
		return fmt.Errorf("registerReward: variant %q already registered",
			name)
	}
	rewardRegistry[name] = f
	return nil
}

// rewardVariant looks a reward variant up by name. Unknown names fail
// here, at construction time, rather than on first use.
func rewardVariant(name string) (RewardFunc, error) {
	f, ok := rewardRegistry[name]
	if !ok {
		return nil, env.Configf("rewardVariant", "no such reward variant "+
			"%q", name)
	}
	return f, nil
}

// Reach implements the reaching task for the arm environment: place
// the effector within a closeness threshold of the target. The reward
// scheme is pluggable, selected by variant name at construction.
//
// The Reach task must be registered with an Arm before it can be used.
type Reach struct {
	env        *Arm
	registered bool

	reward     RewardFunc
	rewardName string

	// epsilon is the closeness threshold for the current episode;
	// defaultEpsilon restores it when a per-episode override expires
	epsilon        float64
	defaultEpsilon float64

	success   env.Ender
	stepLimit env.Ender

	// Random number generation for target placement. Seeded once and
	// advanced across resets so target sequences are reproducible.
	seed    uint64
	goalRng *distmv.Uniform
}

// NewReach returns a new Reach task using the named reward variant.
// A cutoff of 0 leaves episodes unbounded.
func NewReach(rewardName string, seed uint64, cutoff int,
	epsilon float64) (*Reach, error) {
	reward, err := rewardVariant(rewardName)
	if err != nil {
		return nil, err
	}
	if epsilon <= 0 {
		return nil, env.Configf("newReach", "closeness threshold must be "+
			"positive, got %v", epsilon)
	}
	if cutoff < 0 {
		return nil, env.Configf("newReach", "episode cutoff must be a "+
			"positive step count or 0 for unbounded, got %v", cutoff)
	}

	return &Reach{
		reward:         reward,
		rewardName:     rewardName,
		epsilon:        epsilon,
		defaultEpsilon: epsilon,
		stepLimit:      env.NewStepLimit(cutoff),
		seed:           seed,
	}, nil
}

// register registers an Arm environment with the Reach task. This is
// required because the task samples targets within the arm's reachable
// workspace and ends episodes based on the arm's observation layout.
func (r *Reach) register(a *Arm) {
	r.env = a

	reach := a.kin.MaxReach()
	goalSrc := rand.NewSource(r.seed)
	goalBounds := []r1.Interval{
		{Min: -reach, Max: reach},
		{Min: -reach, Max: reach},
	}
	r.goalRng = distmv.NewUniform(goalBounds, goalSrc)

	// Success: the effector-to-target delta held in the last three
	// observation features is within the episode's threshold
	r.success = env.NewFunctionEnder(func(obs mat.Vector) bool {
		n := obs.Len()
		dx, dy, dz := obs.AtVec(n-3), obs.AtVec(n-2), obs.AtVec(n-1)
		return math.Sqrt(dx*dx+dy*dy+dz*dz) < r.epsilon
	}, ts.TerminalStateReached)

	r.registered = true
}

// nextGoal draws the next reachable target position from the task's
// seeded random stream. Samples outside the reachable annulus are
// rejected, so the stream advances by a data-dependent but
// seed-deterministic amount.
func (r *Reach) nextGoal() (x, y float64) {
	if !r.registered {
		panic("nextGoal: must register with Arm environment first")
	}

	margin := r.env.session.Target().Radius
	for {
		goal := r.goalRng.Rand(nil)
		x, y = goal[0], goal[1]
		radius := math.Hypot(x, y)
		if radius >= r.env.kin.MinReach()+margin &&
			radius <= r.env.kin.MaxReach()-margin {
			return x, y
		}
	}
}

// setEpsilon overrides the closeness threshold for the current
// episode. A value of 0 restores the configured default.
func (r *Reach) setEpsilon(epsilon float64) {
	if epsilon > 0 {
		r.epsilon = epsilon
	} else {
		r.epsilon = r.defaultEpsilon
	}
}

// Epsilon returns the closeness threshold in effect for the current
// episode
func (r *Reach) Epsilon() float64 {
	return r.epsilon
}

// Start returns the starting joint state [θ⃗^T, ω⃗^T] for a new
// episode: the configured initial pose with zero velocity.
func (r *Reach) Start() *mat.VecDense {
	if !r.registered {
		panic("start: must register with Arm environment first")
	}

	n := len(r.env.initialAngles)
	backing := make([]float64, 2*n)
	copy(backing[:n], r.env.initialAngles)
	return mat.NewVecDense(2*n, backing)
}

// GetReward returns the reward for a transition. The state and
// nextState arguments are the (x, y, z) effector positions before and
// after the transition; the reward is computed from nextState and the
// current target, following the selected variant.
func (r *Reach) GetReward(state, action, nextState mat.Vector) float64 {
	if !r.registered {
		panic("getReward: must register with Arm environment first")
	}
	if nextState.Len() != 3 {
		panic(fmt.Sprintf("getReward: nextState should provide (x, y, z) "+
			"effector coordinates, got length %v", nextState.Len()))
	}

	return r.reward(nextState, r.env.targetVec())
}

// AtGoal returns whether the (x, y, z) position in state is within the
// closeness threshold of the target
func (r *Reach) AtGoal(state mat.Matrix) bool {
	rows, c := state.Dims()
	if c != 1 || rows != 3 {
		panic("atGoal: argument state should be (x, y, z) coordinates")
	}
	if !r.registered {
		panic("atGoal: must register with Arm environment first")
	}

	current := mat.NewVecDense(3, []float64{
		state.At(0, 0),
		state.At(1, 0),
		state.At(2, 0),
	})
	current.SubVec(r.env.targetVec(), current)

	return mat.Norm(current, 2.0) < r.epsilon
}

// End checks whether a timestep is the last in the episode and adjusts
// it accordingly. Success is checked before the step limit, so a
// timestep can end as TerminalStateReached or Timeout but never both.
func (r *Reach) End(t *ts.TimeStep) bool {
	if !r.registered {
		panic("end: must register with Arm environment first")
	}

	if r.success.End(t) {
		return true
	}
	return r.stepLimit.End(t)
}

// Min returns the minimum attainable reward
func (r *Reach) Min() float64 {
	if r.rewardName == RewardZero {
		return 0.0
	}
	span := 2 * r.env.kin.MaxReach()
	dz := r.env.session.Target().Height - r.env.session.Robot().EffectorHeight
	return -math.Hypot(span, dz)
}

// Max returns the maximum attainable reward
func (r *Reach) Max() float64 {
	return 0.0
}

// RewardSpec returns the reward specification of the task
func (r *Reach) RewardSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	low := mat.NewVecDense(1, []float64{r.Min()})
	high := mat.NewVecDense(1, []float64{r.Max()})

	return env.NewSpec(shape, env.Reward, low, high, env.Continuous)
}
