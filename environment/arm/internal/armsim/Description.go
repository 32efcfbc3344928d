package armsim

import (
	_ "embed"
	"encoding/json"
	"math"
	"os"

	env "github.com/armsim/reacharm/environment"
)

// Descriptions of the robot and target are structured JSON documents
// describing joint types, link geometry, and actuator limits. They are
// consumed once, at session construction. Default descriptions are
// embedded so that environments can be built without any external
// files.

//go:embed assets/reacher2d.json
var defaultRobotJSON []byte

//go:embed assets/target.json
var defaultTargetJSON []byte

// NumArmJoints is the number of actuated joints a robot description
// must declare
const NumArmJoints int = 2

// JointDescription describes a single actuated joint
type JointDescription struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Limit     [2]float64 `json:"limit"` // [lower, upper] in radians
	MaxTorque float64    `json:"maxTorque"`
	MaxSpeed  float64    `json:"maxSpeed"` // radians per second
}

// LinkDescription describes a single rigid link of the arm
type LinkDescription struct {
	Name    string  `json:"name"`
	Length  float64 `json:"length"`
	Width   float64 `json:"width"`
	Density float64 `json:"density"`
}

// RobotDescription describes the kinematic structure of the arm: its
// joints, links, and the height of the plane the effector moves in
type RobotDescription struct {
	Name           string             `json:"name"`
	Joints         []JointDescription `json:"joints"`
	Links          []LinkDescription  `json:"links"`
	EffectorHeight float64            `json:"effectorHeight"`
}

// TargetDescription describes the target body the effector reaches for
type TargetDescription struct {
	Name   string  `json:"name"`
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
}

// Validate checks the structural invariants of a robot description
func (r *RobotDescription) Validate() error {
	if len(r.Joints) != NumArmJoints {
		return env.Configf("validate", "robot %q has %v actuated joints, "+
			"want %v", r.Name, len(r.Joints), NumArmJoints)
	}
	if len(r.Links) != len(r.Joints) {
		return env.Configf("validate", "robot %q has %v links for %v "+
			"joints", r.Name, len(r.Links), len(r.Joints))
	}
	for _, joint := range r.Joints {
		if joint.Type != "revolute" {
			return env.Configf("validate", "joint %q has type %q, only "+
				"revolute joints are supported", joint.Name, joint.Type)
		}
		if joint.Limit[0] >= joint.Limit[1] {
			return env.Configf("validate", "joint %q has inverted limits "+
				"%v", joint.Name, joint.Limit)
		}
		if joint.MaxTorque <= 0 || joint.MaxSpeed <= 0 {
			return env.Configf("validate", "joint %q must have positive "+
				"maxTorque and maxSpeed", joint.Name)
		}
	}
	for _, link := range r.Links {
		if link.Length <= 0 || link.Width <= 0 || link.Density <= 0 {
			return env.Configf("validate", "link %q must have positive "+
				"length, width, and density", link.Name)
		}
	}
	return nil
}

// Validate checks the structural invariants of a target description
func (t *TargetDescription) Validate() error {
	if t.Radius <= 0 {
		return env.Configf("validate", "target %q must have positive "+
			"radius", t.Name)
	}
	return nil
}

// MaxReach returns the outer radius of the arm's reachable workspace
func (r *RobotDescription) MaxReach() float64 {
	reach := 0.0
	for _, link := range r.Links {
		reach += link.Length
	}
	return reach
}

// MinReach returns the inner radius of the arm's reachable workspace
func (r *RobotDescription) MinReach() float64 {
	if len(r.Links) != 2 {
		return 0.0
	}
	return math.Abs(r.Links[0].Length - r.Links[1].Length)
}

// DefaultRobotDescription returns the embedded two-joint arm
// description
func DefaultRobotDescription() *RobotDescription {
	var desc RobotDescription
	if err := json.Unmarshal(defaultRobotJSON, &desc); err != nil {
		panic("defaultRobotDescription: embedded description invalid: " +
			err.Error())
	}
	return &desc
}

// DefaultTargetDescription returns the embedded target description
func DefaultTargetDescription() *TargetDescription {
	var desc TargetDescription
	if err := json.Unmarshal(defaultTargetJSON, &desc); err != nil {
		panic("defaultTargetDescription: embedded description invalid: " +
			err.Error())
	}
	return &desc
}

// LoadRobotDescription reads and validates a robot description from a
// JSON file
func LoadRobotDescription(path string) (*RobotDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &env.ConfigError{Op: "loadRobotDescription", Err: err}
	}

	var desc RobotDescription
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, &env.ConfigError{Op: "loadRobotDescription", Err: err}
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return &desc, nil
}

// LoadTargetDescription reads and validates a target description from
// a JSON file
func LoadTargetDescription(path string) (*TargetDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &env.ConfigError{Op: "loadTargetDescription", Err: err}
	}

	var desc TargetDescription
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, &env.ConfigError{Op: "loadTargetDescription", Err: err}
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return &desc, nil
}
