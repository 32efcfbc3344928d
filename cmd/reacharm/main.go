// Command reacharm scores trained reaching policies. Its eval
// subcommand walks a checkpoint directory in training order, drives
// each saved policy along a closed polygonal target trajectory, and
// reports the per-checkpoint final-error statistics along with the
// best checkpoint.
package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/armsim/reacharm/agent"
	"github.com/armsim/reacharm/agent/policy"
	"github.com/armsim/reacharm/environment/arm"
	"github.com/armsim/reacharm/experiment/evaluate"
	"github.com/armsim/reacharm/experiment/trackers"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reacharm",
		Short: "Reacharm simulates a two-joint planar reaching arm and scores trained reaching policies.",
	}

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate saved policy checkpoints along a polygonal target trajectory",
		RunE:  runEval,
	}

	evalCmd.Flags().String("checkpoints", "checkpoints",
		"directory holding *_<steps>.bin policy snapshots")
	evalCmd.Flags().Uint64("seed", 0, "environment seed")
	evalCmd.Flags().Float64("epsilon", arm.DefaultEpsilon,
		"success radius around the target")
	evalCmd.Flags().Float64("timestep", 0.02, "simulation timestep in seconds")
	evalCmd.Flags().Int("max-steps", 200, "step ceiling per trajectory point")
	evalCmd.Flags().Int("points-per-edge", 5,
		"sampled points per polygon edge")
	evalCmd.Flags().Float64Slice("waypoints",
		[]float64{0.1, 0.1, -0.1, 0.1, -0.1, -0.1, 0.1, -0.1},
		"flattened x,y polygon waypoints")
	evalCmd.Flags().String("track", "",
		"optional gob file to save per-episode final errors to")

	rootCmd.AddCommand(evalCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runEval(cmd *cobra.Command, args []string) error {
	dir, err := cmd.Flags().GetString("checkpoints")
	if err != nil {
		return err
	}
	seed, err := cmd.Flags().GetUint64("seed")
	if err != nil {
		return err
	}
	epsilon, err := cmd.Flags().GetFloat64("epsilon")
	if err != nil {
		return err
	}
	timestep, err := cmd.Flags().GetFloat64("timestep")
	if err != nil {
		return err
	}
	maxSteps, err := cmd.Flags().GetInt("max-steps")
	if err != nil {
		return err
	}
	perEdge, err := cmd.Flags().GetInt("points-per-edge")
	if err != nil {
		return err
	}
	flat, err := cmd.Flags().GetFloat64Slice("waypoints")
	if err != nil {
		return err
	}
	trackFile, err := cmd.Flags().GetString("track")
	if err != nil {
		return err
	}

	if len(flat)%2 != 0 {
		return fmt.Errorf("waypoints must come in x,y pairs, got %v values",
			len(flat))
	}
	waypoints := make([][2]float64, len(flat)/2)
	for i := range waypoints {
		waypoints[i] = [2]float64{flat[2*i], flat[2*i+1]}
	}

	points, err := evaluate.SamplePolygon(waypoints, perEdge)
	if err != nil {
		return err
	}

	// The harness bounds each target with its own step ceiling, so
	// the environment itself runs without an episode cutoff.
	env, _, err := arm.New(arm.Config{
		Timestep: timestep,
		Control:  arm.Velocity,
		Reward:   arm.RewardDistance,
		Seed:     seed,
		Epsilon:  epsilon,
	})
	if err != nil {
		return err
	}
	defer env.Close()

	eval, err := evaluate.New(env, policy.NewZero(arm.NumActions), maxSteps)
	if err != nil {
		return err
	}
	if trackFile != "" {
		eval.Register(trackers.NewFinalError(trackFile))
	}

	scored, err := eval.RunCheckpoints(dir, points,
		func(path string) (agent.Policy, error) {
			return policy.LoadLinear(path)
		})
	if err != nil {
		return err
	}

	for _, s := range scored {
		fmt.Printf("%-40s steps %8d  mean %.5f  std %.5f\n",
			s.Path, s.Steps, s.Mean, s.StdDev)
	}

	best, err := evaluate.Best(scored)
	if err != nil {
		return err
	}
	fmt.Printf("best: %s (steps %d, mean %.5f)\n", best.Path, best.Steps,
		best.Mean)

	if trackFile != "" {
		eval.Save()
	}
	return nil
}
