package timestep

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewHasNoEndType(t *testing.T) {
	obs := mat.NewVecDense(2, []float64{1.0, 2.0})
	step := New(First, 0, 0.99, obs, 0)

	if step.End() != Nil {
		t.Errorf("new timestep has end type %v, want Nil", step.End())
	}
	if !step.First() || step.Mid() || step.Last() {
		t.Error("new timestep with First step type misreports its type")
	}
	if step.Terminated() || step.Truncated() {
		t.Error("new timestep cannot be terminated or truncated")
	}
}

func TestTerminatedAndTruncatedAreExclusive(t *testing.T) {
	obs := mat.NewVecDense(1, []float64{0.0})

	terminal := New(Last, -1.0, 0.99, obs, 10)
	terminal.SetEnd(TerminalStateReached)
	if !terminal.Terminated() {
		t.Error("terminal timestep should report Terminated")
	}
	if terminal.Truncated() {
		t.Error("terminal timestep should not report Truncated")
	}

	truncated := New(Last, -1.0, 0.99, obs, 10)
	truncated.SetEnd(Timeout)
	if !truncated.Truncated() {
		t.Error("timeout timestep should report Truncated")
	}
	if truncated.Terminated() {
		t.Error("timeout timestep should not report Terminated")
	}
}

func TestEndTypeRequiresLastStep(t *testing.T) {
	obs := mat.NewVecDense(1, []float64{0.0})

	step := New(Mid, 0, 0.99, obs, 3)
	step.SetEnd(TerminalStateReached)

	if step.Terminated() || step.Truncated() {
		t.Error("non-last timestep cannot be terminated or truncated")
	}
}
