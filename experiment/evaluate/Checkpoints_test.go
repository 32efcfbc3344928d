package evaluate

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"),
		0o644); err != nil {
		t.Fatalf("could not create %v: %v", name, err)
	}
}

func TestCheckpointsSortByTrainingSteps(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "policy_10.bin")
	touch(t, dir, "policy_2.bin")
	touch(t, dir, "policy_000500.bin")
	touch(t, dir, "notes.txt")
	touch(t, dir, "policy_final.bin")

	checkpoints, err := Checkpoints(dir)
	if err != nil {
		t.Fatalf("could not list checkpoints: %v", err)
	}

	want := []int{2, 10, 500}
	if len(checkpoints) != len(want) {
		t.Fatalf("found %v checkpoints, want %v", len(checkpoints),
			len(want))
	}
	for i, c := range checkpoints {
		if c.Steps != want[i] {
			t.Errorf("checkpoint %v has %v steps, want %v", i, c.Steps,
				want[i])
		}
	}
}

func TestCheckpointsMissingDirectory(t *testing.T) {
	if _, err := Checkpoints("no/such/dir"); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestBestPicksMinimalMean(t *testing.T) {
	scored := []Scored{
		{Checkpoint: Checkpoint{Steps: 100}, Mean: 0.5},
		{Checkpoint: Checkpoint{Steps: 200}, Mean: 0.2},
		{Checkpoint: Checkpoint{Steps: 300}, Mean: 0.3},
	}

	best, err := Best(scored)
	if err != nil {
		t.Fatalf("could not select best checkpoint: %v", err)
	}
	if best.Steps != 200 {
		t.Errorf("best checkpoint has %v steps, want 200", best.Steps)
	}
}

func TestBestBreaksTiesTowardLaterCheckpoints(t *testing.T) {
	scored := []Scored{
		{Checkpoint: Checkpoint{Steps: 100}, Mean: 0.2},
		{Checkpoint: Checkpoint{Steps: 300}, Mean: 0.2},
		{Checkpoint: Checkpoint{Steps: 200}, Mean: 0.2},
	}

	best, err := Best(scored)
	if err != nil {
		t.Fatalf("could not select best checkpoint: %v", err)
	}
	if best.Steps != 300 {
		t.Errorf("tied checkpoints selected %v steps, want the later 300",
			best.Steps)
	}
}

func TestBestRequiresCheckpoints(t *testing.T) {
	if _, err := Best(nil); err == nil {
		t.Error("expected an error for an empty scored slice")
	}
}
