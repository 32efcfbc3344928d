package evaluate

import (
	"math"
	"testing"
)

func TestSamplePolygonUniformSpacing(t *testing.T) {
	const tolerance = 1e-12

	square := [][2]float64{
		{0, 0}, {1, 0}, {1, 1}, {0, 1},
	}

	points, err := SamplePolygon(square, 5)
	if err != nil {
		t.Fatalf("could not sample polygon: %v", err)
	}

	if len(points) != 20 {
		t.Fatalf("sampled %v points, want 20", len(points))
	}
	if points[0] != square[0] {
		t.Errorf("sampling starts at %v, want first waypoint %v", points[0],
			square[0])
	}

	// Consecutive points, including the wrap back to the start, are
	// separated by a constant arc length of perimeter/n
	want := 4.0 / 20.0
	for i := range points {
		next := points[(i+1)%len(points)]
		got := math.Hypot(next[0]-points[i][0], next[1]-points[i][1])
		if math.Abs(got-want) > tolerance {
			t.Errorf("spacing between points %v and %v is %v, want %v", i,
				(i+1)%len(points), got, want)
		}
	}
}

func TestSamplePolygonCrossesWaypoints(t *testing.T) {
	triangle := [][2]float64{
		{0, 0}, {3, 0}, {0, 4},
	}

	points, err := SamplePolygon(triangle, 1)
	if err != nil {
		t.Fatalf("could not sample polygon: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("sampled %v points, want 3", len(points))
	}

	// With one point per unit of perimeter fraction, samples need not
	// land on the waypoints, but they must stay on the polygon edges.
	// Check the perimeter is partitioned evenly instead.
	perimeter := 3.0 + 5.0 + 4.0
	want := perimeter / 3.0
	for i := range points {
		next := points[(i+1)%len(points)]
		got := math.Hypot(next[0]-points[i][0], next[1]-points[i][1])
		if got > want {
			t.Errorf("chord between samples %v and %v is %v, beyond the "+
				"arc spacing %v", i, (i+1)%len(points), got, want)
		}
	}
}

func TestSamplePolygonArguments(t *testing.T) {
	if _, err := SamplePolygon([][2]float64{{0, 0}, {1, 1}}, 5); err == nil {
		t.Error("expected an error for fewer than 3 waypoints")
	}

	square := [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	if _, err := SamplePolygon(square, 0); err == nil {
		t.Error("expected an error for zero points per edge")
	}

	degenerate := [][2]float64{{1, 1}, {1, 1}, {1, 1}}
	if _, err := SamplePolygon(degenerate, 2); err == nil {
		t.Error("expected an error for a zero-perimeter polygon")
	}
}
