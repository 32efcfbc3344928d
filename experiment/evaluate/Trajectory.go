// Package evaluate implements a scripted evaluation harness for
// reaching environments: it drives a frozen policy along a closed
// target trajectory and scores it by the final distance-to-target at
// each sampled point.
package evaluate

import (
	"fmt"
	"math"
)

// SamplePolygon samples a closed polygonal trajectory into equally
// spaced points. The polygon is defined by an ordered set of 2D
// waypoints and is closed implicitly (the last waypoint connects back
// to the first). The returned sequence has len(waypoints)×perEdge
// points, starting at the first waypoint, with constant consecutive
// arc-length spacing perimeter/(len(waypoints)×perEdge).
func SamplePolygon(waypoints [][2]float64, perEdge int) ([][2]float64,
	error) {
	if len(waypoints) < 3 {
		return nil, fmt.Errorf("samplePolygon: need at least 3 waypoints, "+
			"got %v", len(waypoints))
	}
	if perEdge < 1 {
		return nil, fmt.Errorf("samplePolygon: need at least 1 point per "+
			"edge, got %v", perEdge)
	}

	// Cumulative arc length at the start of each edge of the closed
	// polygon
	numEdges := len(waypoints)
	cumulative := make([]float64, numEdges+1)
	for i := 0; i < numEdges; i++ {
		from := waypoints[i]
		to := waypoints[(i+1)%numEdges]
		length := math.Hypot(to[0]-from[0], to[1]-from[1])
		cumulative[i+1] = cumulative[i] + length
	}

	perimeter := cumulative[numEdges]
	if perimeter <= 0 {
		return nil, fmt.Errorf("samplePolygon: polygon has zero perimeter")
	}

	n := numEdges * perEdge
	spacing := perimeter / float64(n)

	points := make([][2]float64, n)
	edge := 0
	for k := 0; k < n; k++ {
		distance := float64(k) * spacing

		for edge < numEdges-1 && cumulative[edge+1] <= distance {
			edge++
		}

		from := waypoints[edge]
		to := waypoints[(edge+1)%numEdges]
		edgeLen := cumulative[edge+1] - cumulative[edge]
		frac := 0.0
		if edgeLen > 0 {
			frac = (distance - cumulative[edge]) / edgeLen
		}

		points[k] = [2]float64{
			from[0] + frac*(to[0]-from[0]),
			from[1] + frac*(to[1]-from[1]),
		}
	}

	return points, nil
}
