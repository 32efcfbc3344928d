package evaluate

import (
	"math"
	"testing"

	"github.com/armsim/reacharm/agent/policy"
	"github.com/armsim/reacharm/environment/arm"
)

// newEvalEnv opens an arm environment suitable for evaluation: no
// episode cutoff, so the harness's per-target ceiling is the only
// bound on stepping
func newEvalEnv(t *testing.T) *arm.Arm {
	t.Helper()

	a, _, err := arm.New(arm.Config{
		Timestep: 0.02,
		Control:  arm.Velocity,
		Reward:   arm.RewardDistance,
		Seed:     42,
	})
	if err != nil {
		t.Fatalf("could not construct environment: %v", err)
	}
	return a
}

func TestEvaluationRunScoresEveryPoint(t *testing.T) {
	a := newEvalEnv(t)
	defer a.Close()

	// A triangle inside the reachable workspace, kept away from the
	// origin so every sampled edge point stays reachable
	triangle := [][2]float64{
		{0.1, 0.02}, {0.18, 0.02}, {0.14, 0.1},
	}
	points, err := SamplePolygon(triangle, 2)
	if err != nil {
		t.Fatalf("could not sample trajectory: %v", err)
	}

	eval, err := New(a, policy.NewZero(arm.NumActions), 3)
	if err != nil {
		t.Fatalf("could not construct evaluation: %v", err)
	}

	result, err := eval.Run(points)
	if err != nil {
		t.Fatalf("evaluation run failed: %v", err)
	}

	if len(result.FinalErrors) != len(points) {
		t.Fatalf("recorded %v final errors for %v points",
			len(result.FinalErrors), len(points))
	}
	for i, e := range result.FinalErrors {
		if e <= 0 || math.IsNaN(e) {
			t.Errorf("final error %v is %v, want a positive distance", i, e)
		}
	}
	if result.Mean <= 0 || result.StdDev < 0 {
		t.Errorf("statistics mean %v, std %v are not plausible",
			result.Mean, result.StdDev)
	}
}

func TestEvaluationRejectsBadArguments(t *testing.T) {
	a := newEvalEnv(t)
	defer a.Close()

	if _, err := New(a, policy.NewZero(arm.NumActions), 0); err == nil {
		t.Error("expected an error for a zero step ceiling")
	}

	eval, err := New(a, policy.NewZero(arm.NumActions), 3)
	if err != nil {
		t.Fatalf("could not construct evaluation: %v", err)
	}
	if _, err := eval.Run(nil); err == nil {
		t.Error("expected an error for an empty trajectory")
	}
	if _, err := eval.Run([][2]float64{{5.0, 5.0}}); err == nil {
		t.Error("expected an error for an unreachable trajectory point")
	}
}
