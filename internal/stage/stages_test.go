package stage

import (
	"context"
	"testing"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoastStageClosesShore(t *testing.T) {
	env, _ := newTestEnv(t)
	addLine(env, "COASTLINE", "", orb.LineString{{0, 0}, {0.5, 0}, {1, 0}, {1, 0.5}, {1, 1}})
	addLine(env, "COASTLINE", "", orb.LineString{{1, 1.003}, {0.5, 1.003}, {0, 1}, {0, 0.5}, {0, 0.004}})
	addLine(env, "COASTLINE", "", orb.LineString{{5, 5}, {5.001, 5}, {5.002, 5}})

	opts := DefaultCoastOptions()
	opts.Mainland = false
	res, err := (&CoastStage{Options: opts}).Run(context.Background(), env)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Counters["pruned"])
	assert.Equal(t, 1, res.Counters["merged"])
	assert.Equal(t, 1, res.Counters["closed"])
	assert.Equal(t, 0, res.Unresolved)

	shore := env.Data.Lines.Select(store.Shore())
	require.Len(t, shore, 1)
	f, err := env.Data.Lines.Get(shore[0])
	require.NoError(t, err)
	assert.True(t, geometry.IsClosed(f.Geometry))
	assert.Equal(t, 1, env.Data.Lines.Len())
}

func TestCoastStageNamedLake(t *testing.T) {
	env, _ := newTestEnv(t)
	addLine(env, "COASTLINE", "", square(0, 0, 1))
	addLine(env, "COASTLINE", "", square(0.3, 0.3, 0.2))

	opts := DefaultCoastOptions()
	opts.Mainland = false
	opts.Lakes = []NamedLake{{Name: "Arain", Surface: 4180, Point: orb.Point{0.4, 0.4}}}
	res, err := (&CoastStage{Options: opts}).Run(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Counters["named_lakes"])

	lakes := env.Data.Lines.Select(store.LakeBody())
	require.Len(t, lakes, 1)
	f, err := env.Data.Lines.Get(lakes[0])
	require.NoError(t, err)
	assert.Equal(t, feature.Lake{Name: "Arain", Surface: 4180}, f.Type)
	assert.Equal(t, "LAKE/Arain", f.Name)
	assert.InDelta(t, 0.8, geometry.Length(f.Geometry), 1e-6)

	assert.Len(t, env.Data.Lines.Select(store.Shore()), 1)
}

func TestElevationStagePropagatesFromPeak(t *testing.T) {
	env, hook := newTestEnv(t)
	outer := addLine(env, "CONTOURS", "", square(0, 0, 10))
	middle := addLine(env, "CONTOURS", "", square(2, 2, 6))
	inner := addLine(env, "CONTOURS", "", square(4, 4, 2))
	lonely := addLine(env, "CONTOURS", "", square(20, 20, 1))
	addPoint(env, "HEIGHT_4000", orb.Point{2.001, 5})
	addPoint(env, "PEAK", orb.Point{5, 5})

	res, err := (&ElevationStage{Options: DefaultElevationOptions()}).Run(context.Background(), env)
	require.NoError(t, err)

	assert.Equal(t, feature.Elevation{Meters: 3500}, typeOf(t, env, outer))
	assert.Equal(t, feature.Elevation{Meters: 4000}, typeOf(t, env, middle))
	assert.Equal(t, feature.Elevation{Meters: 4500}, typeOf(t, env, inner))
	assert.True(t, feature.IsPending(typeOf(t, env, lonely)))
	assert.Equal(t, 1, res.Unresolved)
	assert.Equal(t, 1, res.Counters["matched"])
	assert.Equal(t, 1, res.Counters["seeds"])
	assert.Equal(t, 0, res.Counters["conflicts"])
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, "elevation conflict", e.Message)
	}
}

func TestLakeStageClassifies(t *testing.T) {
	env, hook := newTestEnv(t)
	env.Data.Lines.Insert(feature.Feature{Type: feature.Elevation{Meters: 500}, Geometry: square(0, 0, 10)})
	env.Data.Lines.Insert(feature.Feature{Type: feature.Elevation{Meters: 1000}, Geometry: square(2, 2, 6)})
	lake := addLine(env, "LAKES", "fill: #d4effc; stroke: none", square(4, 4, 1))
	plain := addLine(env, "LAKES", "fill: none", square(4.2, 4.2, 0.5))

	env.Data.Lines.Insert(feature.Feature{Type: feature.Elevation{Meters: 500}, Geometry: square(30, 0, 10)})
	env.Data.Lines.Insert(feature.Feature{Type: feature.Elevation{Meters: 2000}, Geometry: square(32, 2, 6)})
	broken := addLine(env, "LAKES", "fill: #d4effc", square(34, 4, 1))

	res, err := (&LakeStage{Options: DefaultLakeOptions()}).Run(context.Background(), env)
	require.NoError(t, err)

	assert.Equal(t, feature.Lake{}, typeOf(t, env, lake))
	assert.Equal(t, feature.Lake{Broken: true}, typeOf(t, env, broken))
	assert.True(t, feature.IsPending(typeOf(t, env, plain)))
	assert.Equal(t, 1, res.Counters["lakes"])
	assert.Equal(t, 1, res.Counters["broken"])

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Message == "lake sanity check failed" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestLakeStageSkipsRingsAroundOutlines(t *testing.T) {
	env, _ := newTestEnv(t)
	env.Data.Lines.Insert(feature.Feature{Type: feature.Elevation{Meters: 500}, Geometry: square(0, 0, 10)})
	shadowed := addLine(env, "CONTOURS", "", square(2, 2, 6))
	addLine(env, "LAKES", "fill: none", square(4, 4, 1))

	env.Data.Lines.Insert(feature.Feature{Type: feature.Elevation{Meters: 500}, Geometry: square(30, 0, 10)})
	bare := addLine(env, "CONTOURS", "", square(32, 2, 6))

	res, err := (&LakeStage{Options: DefaultLakeOptions()}).Run(context.Background(), env)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Counters["seeds"])
	assert.Equal(t, feature.Elevation{Meters: 1000}, typeOf(t, env, bare))
	assert.True(t, feature.IsPending(typeOf(t, env, shadowed)))
	assert.Equal(t, 1, res.Unresolved)
}

func TestRiverStage(t *testing.T) {
	env, _ := newTestEnv(t)
	env.Data.Lines.Insert(feature.Feature{Type: feature.Elevation{}, Geometry: orb.LineString{{10, 10}, {30, 10}, {30, 20}, {10, 20}, {10, 10}}})
	drains := addLine(env, "STREAMS", "", orb.LineString{{15, 10.002}, {15, 10.05}, {15, 10.1}})
	stray := addLine(env, "STREAMS", "", orb.LineString{{15, 15}, {15, 15.5}})

	res, err := (&RiverStage{Options: DefaultRiverOptions()}).Run(context.Background(), env)
	require.NoError(t, err)

	_, err = env.Data.Lines.Get(drains)
	assert.Error(t, err)
	mouths := env.Data.Lines.Select(store.MouthAt(0, feature.Start))
	require.Len(t, mouths, 1)
	f, err := env.Data.Lines.Get(mouths[0])
	require.NoError(t, err)
	assert.Equal(t, orb.Point{15, 10}, geometry.StartPoint(f.Geometry.(orb.LineString)))

	s, err := env.Data.Lines.Get(stray)
	require.NoError(t, err)
	assert.Equal(t, "candidate", s.Name)
	assert.Equal(t, 1, res.Unresolved)
	assert.Equal(t, 1, res.Counters["mouths"])
}

func TestRoadStage(t *testing.T) {
	env, _ := newTestEnv(t)
	main := addLine(env, "ROADS", "", orb.LineString{{0, 0}, {1, 0}, {2, 0}, {3, 0}})
	spur := addLine(env, "ROADS", "", orb.LineString{{1.003, 3}, {1.002, 2}, {1.001, 1}, {1.001, 0.003}})
	addPoint(env, "TOWNS", orb.Point{2, 0.002})

	res, err := (&RoadStage{Options: DefaultRoadOptions()}).Run(context.Background(), env)
	require.NoError(t, err)

	m, err := env.Data.Lines.Get(main)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{2, 0.002}, m.Geometry.(orb.LineString)[2], "nearest vertex moves onto the town")

	s, err := env.Data.Lines.Get(spur)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{1, 0}, geometry.EndPoint(s.Geometry.(orb.LineString)), "spur end ties to the main road")

	assert.Equal(t, 1, res.Counters["settled"])
	assert.Equal(t, 1, res.Counters["tied"])
	assert.Equal(t, 1, res.Unresolved)
}

func TestVegetationPriority(t *testing.T) {
	env, _ := newTestEnv(t)
	addLine(env, "FOREST", "", square(0, 0, 2))
	addLine(env, "SNOW_x2F_ICE", "", orb.LineString{{1, 1}, {3, 1}, {3, 3}, {1, 3}})
	addLine(env, "HEATH", "", orb.LineString{{9, 9}, {9.5, 9}})

	res, err := (&VegetationStage{Options: DefaultVegetationOptions()}).Run(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Counters["areas"])
	assert.Equal(t, 1, res.Unresolved)

	areas := map[string]float64{}
	for _, f := range env.Data.Polygons.Features() {
		v, ok := f.Type.(feature.Vegetation)
		require.True(t, ok)
		areas[v.Class] += geometry.Area(f.Geometry)
		assert.Equal(t, feature.DefaultName, f.Name)
	}
	assert.InDelta(t, 3.0, areas["FOREST"], 1e-9)
	assert.InDelta(t, 4.0, areas["SNOW_x2F_ICE"], 1e-9)
}
