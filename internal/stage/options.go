package stage

import (
	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/paulmach/orb"
)

// CoastOptions configures the coast stage.
type CoastOptions struct {
	// Connect is the largest endpoint gap bridged between coastlines. It is
	// also the prune length.
	Connect float64

	// Noise is the buffer radius used to fill river inlets and dry river
	// mouths, and the longest ring treated as noise.
	Noise float64

	// Islands are points inside islands whose coast should grow over river
	// inlets.
	Islands []orb.Point

	// Lakes are enclosed water bodies drawn as coastline.
	Lakes []NamedLake

	// Mainland builds the main shore from the open coastline remainder.
	Mainland bool
}

// NamedLake identifies a coastline ring as a lake by an inner point.
type NamedLake struct {
	Name    string
	Surface int
	Point   orb.Point
}

// DefaultCoastOptions returns default options.
func DefaultCoastOptions() CoastOptions {
	return CoastOptions{
		Connect:  0.007,
		Noise:    0.015,
		Mainland: true,
	}
}

// ElevationOptions configures the elevation stage.
type ElevationOptions struct {
	// LabelMatch is the largest distance between a label and its contour.
	LabelMatch float64
	// Connect is the largest endpoint gap bridged between contours.
	Connect float64
	// Step is the contour interval.
	Step int
}

// DefaultElevationOptions returns default options.
func DefaultElevationOptions() ElevationOptions {
	return ElevationOptions{
		LabelMatch: 0.0025,
		Connect:    0.007,
		Step:       500,
	}
}

// LakeOptions configures the lakes stage.
type LakeOptions struct {
	Prune float64
	Step  int
	// Fill is the fill colour marking lake bodies.
	Fill string
}

// DefaultLakeOptions returns default options.
func DefaultLakeOptions() LakeOptions {
	return LakeOptions{
		Prune: 0.01,
		Step:  500,
		Fill:  "#d4effc",
	}
}

// RiverOptions configures the rivers stage.
type RiverOptions struct {
	// Epsilon must be a bit larger than the coast noise radius.
	Epsilon float64
	// AreaFill is the fill colour of streams drawn as areas.
	AreaFill string
}

// DefaultRiverOptions returns default options.
func DefaultRiverOptions() RiverOptions {
	return RiverOptions{
		Epsilon:  0.0045,
		AreaFill: "#36868d",
	}
}

// RoadOptions configures the roads stage.
type RoadOptions struct {
	Epsilon float64
}

// DefaultRoadOptions returns default options.
func DefaultRoadOptions() RoadOptions {
	return RoadOptions{Epsilon: 0.005}
}

// VegetationOptions configures the vegetation stage.
type VegetationOptions struct {
	// Classes in priority order: every class is clipped by all later ones.
	Classes []string
}

// DefaultVegetationOptions returns default options.
func DefaultVegetationOptions() VegetationOptions {
	return VegetationOptions{
		Classes: append([]string(nil), feature.VegetationClasses...),
	}
}
