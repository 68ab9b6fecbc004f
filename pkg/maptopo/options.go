package maptopo

import (
	"github.com/beetlebugorg/maptopo/internal/stage"
	"github.com/sirupsen/logrus"
)

type (
	// StageName names a resolution stage.
	StageName = stage.Name

	CoastOptions      = stage.CoastOptions
	NamedLake         = stage.NamedLake
	ElevationOptions  = stage.ElevationOptions
	LakeOptions       = stage.LakeOptions
	RiverOptions      = stage.RiverOptions
	RoadOptions       = stage.RoadOptions
	VegetationOptions = stage.VegetationOptions
)

const (
	StageCoast      = stage.Coast
	StageElevation  = stage.Elevation
	StageLakes      = stage.Lakes
	StageRivers     = stage.Rivers
	StageRoads      = stage.Roads
	StageVegetation = stage.Vegetation
)

// Options configures a run.
type Options struct {
	// Prefix names the dataset; its tables are <prefix>_lines,
	// <prefix>_pts and <prefix>_polys.
	Prefix string

	// Stages selects the stages to run. Empty runs all of them.
	Stages []StageName

	// SequenceStart is the lowest id given to synthetic features. Loaded
	// ids push it further up.
	SequenceStart int64

	Coast      CoastOptions
	Elevation  ElevationOptions
	Lakes      LakeOptions
	Rivers     RiverOptions
	Roads      RoadOptions
	Vegetation VegetationOptions

	// MetricsFile, when set, receives the stage metrics of the run in the
	// Prometheus text format.
	MetricsFile string

	// DryRun skips the commit.
	DryRun bool

	Log logrus.FieldLogger
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		SequenceStart: 100000,
		Coast:         stage.DefaultCoastOptions(),
		Elevation:     stage.DefaultElevationOptions(),
		Lakes:         stage.DefaultLakeOptions(),
		Rivers:        stage.DefaultRiverOptions(),
		Roads:         stage.DefaultRoadOptions(),
		Vegetation:    stage.DefaultVegetationOptions(),
		Log:           logrus.StandardLogger(),
	}
}

// ParseStage returns the stage called name.
func ParseStage(name string) (StageName, error) {
	return stage.ParseName(name)
}

// pipeline builds the stages selected by opts.
func (opts Options) pipeline() *stage.Pipeline {
	all := map[StageName]stage.Stage{
		StageCoast:      &stage.CoastStage{Options: opts.Coast},
		StageElevation:  &stage.ElevationStage{Options: opts.Elevation},
		StageLakes:      &stage.LakeStage{Options: opts.Lakes},
		StageRivers:     &stage.RiverStage{Options: opts.Rivers},
		StageRoads:      &stage.RoadStage{Options: opts.Roads},
		StageVegetation: &stage.VegetationStage{Options: opts.Vegetation},
	}
	names := opts.Stages
	if len(names) == 0 {
		names = stage.Order
	}
	seen := make(map[StageName]bool)
	var stages []stage.Stage
	for _, n := range names {
		if s, ok := all[n]; ok && !seen[n] {
			stages = append(stages, s)
			seen[n] = true
		}
	}
	return stage.NewPipeline(stages...)
}
