package trackers

import (
	"encoding/gob"
	"log"
	"math"
	"os"

	ts "github.com/armsim/reacharm/timestep"
)

// FinalError tracks and saves the effector-to-target distance at the
// end of each episode. The distance is recovered from the relative
// vector held in the last three observation features, so the tracker
// works on any environment exposing that observation layout.
//
// Note: An episode must finish for this Tracker to record its final
// error. If the last episode does not finish, its error is not saved.
type FinalError struct {
	finalErrors []float64
	filename    string
}

// NewFinalError creates and returns a new *FinalError Tracker
func NewFinalError(filename string) Tracker {
	return &FinalError{filename: filename}
}

// Track inspects a timestep and, if it is the last in an episode,
// records the episode's final effector-to-target distance
func (f *FinalError) Track(step ts.TimeStep) {
	if !step.Last() {
		return
	}

	n := step.Observation.Len()
	dx := step.Observation.AtVec(n - 3)
	dy := step.Observation.AtVec(n - 2)
	dz := step.Observation.AtVec(n - 1)
	f.finalErrors = append(f.finalErrors, math.Sqrt(dx*dx+dy*dy+dz*dz))
}

// Save saves the data tracked by the FinalError Tracker to disk
func (f *FinalError) Save() {
	file, err := os.Create(f.filename)
	if err != nil {
		log.Fatalf("could not open save file: %v", err)
	}
	defer file.Close()

	en := gob.NewEncoder(file)
	if err = en.Encode(f.finalErrors); err != nil {
		log.Fatalf("could not encode final error data: %v", err)
	}
}
