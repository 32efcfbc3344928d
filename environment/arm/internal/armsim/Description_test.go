package armsim

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	env "github.com/armsim/reacharm/environment"
)

func TestDefaultDescriptionsAreValid(t *testing.T) {
	robot := DefaultRobotDescription()
	if err := robot.Validate(); err != nil {
		t.Errorf("embedded robot description invalid: %v", err)
	}
	if len(robot.Joints) != NumArmJoints {
		t.Errorf("embedded robot has %v joints, want %v", len(robot.Joints),
			NumArmJoints)
	}
	if robot.MaxReach() <= robot.MinReach() {
		t.Errorf("embedded robot has reach annulus [%v, %v]",
			robot.MinReach(), robot.MaxReach())
	}

	target := DefaultTargetDescription()
	if err := target.Validate(); err != nil {
		t.Errorf("embedded target description invalid: %v", err)
	}
}

func TestValidateRejectsBadRobots(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RobotDescription)
	}{
		{
			"wrong joint count",
			func(r *RobotDescription) { r.Joints = r.Joints[:1] },
		},
		{
			"inverted joint limits",
			func(r *RobotDescription) {
				r.Joints[0].Limit = [2]float64{1.0, -1.0}
			},
		},
		{
			"unsupported joint type",
			func(r *RobotDescription) { r.Joints[1].Type = "prismatic" },
		},
		{
			"non-positive torque",
			func(r *RobotDescription) { r.Joints[0].MaxTorque = 0 },
		},
		{
			"non-positive link length",
			func(r *RobotDescription) { r.Links[1].Length = -0.1 },
		},
	}

	for _, test := range tests {
		robot := DefaultRobotDescription()
		test.mutate(robot)

		err := robot.Validate()
		if err == nil {
			t.Errorf("%v: expected a validation error", test.name)
			continue
		}

		var cfgErr *env.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("%v: error %v is not a ConfigError", test.name, err)
		}
	}
}

func TestLoadRobotDescription(t *testing.T) {
	if _, err := LoadRobotDescription("no/such/file.json"); err == nil {
		t.Error("expected an error for a missing description file")
	} else {
		var cfgErr *env.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("missing file gave %v, not a ConfigError", err)
		}
	}

	path := filepath.Join(t.TempDir(), "robot.json")
	if err := os.WriteFile(path, defaultRobotJSON, 0o644); err != nil {
		t.Fatalf("could not write description file: %v", err)
	}

	robot, err := LoadRobotDescription(path)
	if err != nil {
		t.Fatalf("could not load description file: %v", err)
	}
	if robot.Name != DefaultRobotDescription().Name {
		t.Errorf("loaded robot %q, want %q", robot.Name,
			DefaultRobotDescription().Name)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("could not write description file: %v", err)
	}
	if _, err := LoadRobotDescription(path); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestLoadTargetDescription(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target.json")
	if err := os.WriteFile(path,
		[]byte(`{"name": "flat", "radius": 0.0, "height": 0.01}`),
		0o644); err != nil {
		t.Fatalf("could not write description file: %v", err)
	}

	if _, err := LoadTargetDescription(path); err == nil {
		t.Error("expected an error for a target with no radius")
	}
}
