package main

import (
	"fmt"
	"log"

	"github.com/armsim/reacharm/agent/policy"
	"github.com/armsim/reacharm/environment/arm"
	"github.com/armsim/reacharm/experiment/evaluate"
	"github.com/armsim/reacharm/experiment/trackers"
)

func main() {
	var seed uint64 = 192382

	// Create the reaching environment. Evaluation bounds each target
	// with its own step ceiling, so the episode cutoff stays
	// unbounded.
	env, step, err := arm.New(arm.Config{
		Timestep: 0.02,
		Control:  arm.Velocity,
		Reward:   arm.RewardDistance,
		Seed:     seed,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer env.Close()
	fmt.Println("initial:", step)

	// Sample a square target trajectory inside the workspace
	square := [][2]float64{
		{0.1, 0.1}, {-0.1, 0.1}, {-0.1, -0.1}, {0.1, -0.1},
	}
	points, err := evaluate.SamplePolygon(square, 5)
	if err != nil {
		log.Fatal(err)
	}

	// Score a do-nothing baseline along the trajectory
	tracker := trackers.NewFinalError("data.bin")
	eval, err := evaluate.New(env, policy.NewZero(arm.NumActions), 200,
		tracker)
	if err != nil {
		log.Fatal(err)
	}

	result, err := eval.Run(points)
	if err != nil {
		log.Fatal(err)
	}
	eval.Save()

	fmt.Printf("mean final error: %.5f (std %.5f) over %d targets\n",
		result.Mean, result.StdDev, len(result.FinalErrors))
}
