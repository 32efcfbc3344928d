// Package envconfig provides configuration structs for configuring
// environments with default physical parameters and tasks. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"fmt"

	env "github.com/armsim/reacharm/environment"
	"github.com/armsim/reacharm/environment/arm"
	ts "github.com/armsim/reacharm/timestep"
)

// ControlName names the control modes that can be configured with
// this package
type ControlName string

// Control modes available for configuration
const (
	Velocity ControlName = "Velocity"
	Position ControlName = "Position"
)

// Default physical parameters
const (
	DefaultTimestep float64 = 1.0 / 50.0
	DefaultDiscount float64 = 0.99
)

// Config implements a specific configuration of the arm environment
// and its reaching task. Reward variant names are validated when the
// environment is created, so an unknown name fails at construction
// rather than on first use.
type Config struct {
	Robot             string      `json:"robot"`  // description path, "" = default
	Target            string      `json:"target"` // description path, "" = default
	Control           ControlName `json:"control"`
	Reward            string      `json:"reward"`
	Timestep          float64     `json:"timestep"`
	Epsilon           float64     `json:"epsilon"`
	EpisodeCutoff     uint        `json:"episodeCutoff"`
	Discount          float64     `json:"discount"`
	InitialAngleDeg   []float64   `json:"initialAngleDeg"`
	RandomInitialPose bool        `json:"randomInitialPose"`
}

// NewConfig returns a new environment Config with default timestep
// and discount
func NewConfig(control ControlName, reward string, episodeCutoff uint,
	epsilon float64) Config {
	return Config{
		Control:       control,
		Reward:        reward,
		Timestep:      DefaultTimestep,
		Epsilon:       epsilon,
		EpisodeCutoff: episodeCutoff,
		Discount:      DefaultDiscount,
	}
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment
func (c Config) Create(seed uint64) (env.Environment, ts.TimeStep, error) {
	var control arm.ControlMode
	switch c.Control {
	case Velocity, "":
		control = arm.Velocity
	case Position:
		control = arm.Position
	default:
		return nil, ts.TimeStep{}, env.Configf("create", "no such control "+
			"mode %q", c.Control)
	}

	timestep := c.Timestep
	if timestep == 0 {
		timestep = DefaultTimestep
	}
	discount := c.Discount
	if discount == 0 {
		discount = DefaultDiscount
	}

	e, first, err := arm.New(arm.Config{
		RobotPath:         c.Robot,
		TargetPath:        c.Target,
		Timestep:          timestep,
		Control:           control,
		InitialAngleDeg:   c.InitialAngleDeg,
		RandomInitialPose: c.RandomInitialPose,
		Reward:            c.Reward,
		Seed:              seed,
		Epsilon:           c.Epsilon,
		EpisodeCutoff:     int(c.EpisodeCutoff),
		Discount:          discount,
	})
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}
	return e, first, nil
}
