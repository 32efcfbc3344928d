package evaluate

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/armsim/reacharm/agent"
)

// Training writes a sequence of weight-snapshot files under a per-run
// directory. Filenames encode a monotonically increasing training
// step count as a trailing "_<steps>.bin" suffix (for example
// policy_000100.bin), which gives the files a browse-in-training-order
// semantics independent of filesystem timestamps.
var checkpointPattern = regexp.MustCompile(`_([0-9]+)\.bin$`)

// Checkpoint is a weight-snapshot file along with the training step
// count parsed from its filename
type Checkpoint struct {
	Path  string
	Steps int
}

// Scored is a Checkpoint together with its evaluation statistics
type Scored struct {
	Checkpoint
	Mean   float64
	StdDev float64
}

// tieTolerance is the mean-error difference below which two scored
// checkpoints are considered tied
const tieTolerance float64 = 1e-12

// Checkpoints lists the weight snapshots in dir in training order
// (ascending step count). Files whose names do not carry a step-count
// suffix are ignored.
func Checkpoints(dir string) ([]Checkpoint, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("checkpoints: %v", err)
	}

	checkpoints := make([]Checkpoint, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		match := checkpointPattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}

		steps, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}

		checkpoints = append(checkpoints, Checkpoint{
			Path:  filepath.Join(dir, entry.Name()),
			Steps: steps,
		})
	}

	sort.Slice(checkpoints, func(i, j int) bool {
		return checkpoints[i].Steps < checkpoints[j].Steps
	})
	return checkpoints, nil
}

// RunCheckpoints scores every checkpoint in dir against the given
// trajectory points, loading each policy with load. Checkpoints are
// evaluated in training order.
func (e *Evaluation) RunCheckpoints(dir string, points [][2]float64,
	load func(path string) (agent.Policy, error)) ([]Scored, error) {
	checkpoints, err := Checkpoints(dir)
	if err != nil {
		return nil, err
	}
	if len(checkpoints) == 0 {
		return nil, fmt.Errorf("runCheckpoints: no checkpoints in %v", dir)
	}

	scored := make([]Scored, 0, len(checkpoints))
	for _, checkpoint := range checkpoints {
		policy, err := load(checkpoint.Path)
		if err != nil {
			return nil, fmt.Errorf("runCheckpoints: %v", err)
		}
		e.SetPolicy(policy)

		result, err := e.Run(points)
		if err != nil {
			return nil, fmt.Errorf("runCheckpoints: checkpoint %v: %v",
				checkpoint.Path, err)
		}

		scored = append(scored, Scored{
			Checkpoint: checkpoint,
			Mean:       result.Mean,
			StdDev:     result.StdDev,
		})
	}
	return scored, nil
}

// Best selects the checkpoint with minimal mean final error. Ties
// within tieTolerance are broken in favour of the checkpoint with the
// larger training step count.
func Best(scored []Scored) (Scored, error) {
	if len(scored) == 0 {
		return Scored{}, fmt.Errorf("best: no scored checkpoints")
	}

	best := scored[0]
	for _, s := range scored[1:] {
		switch {
		case s.Mean < best.Mean-tieTolerance:
			best = s
		case math.Abs(s.Mean-best.Mean) <= tieTolerance &&
			s.Steps > best.Steps:
			best = s
		}
	}
	return best, nil
}
