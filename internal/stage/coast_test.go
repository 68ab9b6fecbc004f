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

func TestCoastStageIslandFillsInlet(t *testing.T) {
	env, _ := newTestEnv(t)
	// A river inlet 0.01 wide cut half way into the island from the top.
	id := addLine(env, "COASTLINE", "", orb.LineString{
		{0, 0}, {1, 0}, {1, 1}, {0.505, 1}, {0.505, 0.5}, {0.495, 0.5}, {0.495, 1}, {0, 1}, {0, 0},
	})

	opts := DefaultCoastOptions()
	opts.Mainland = false
	opts.Islands = []orb.Point{{0.25, 0.25}}
	res, err := (&CoastStage{Options: opts}).Run(context.Background(), env)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Counters["islands"])
	assert.Equal(t, 1, res.Counters["shore"])
	shore := env.Data.Lines.Select(store.Shore())
	require.Equal(t, []int64{id}, shore)

	f, err := env.Data.Lines.Get(id)
	require.NoError(t, err)
	assert.True(t, geometry.IsClosed(f.Geometry))
	length := geometry.Length(f.Geometry)
	assert.Less(t, length, 4.1)
	assert.Greater(t, length, 3.9)
}

func TestCoastStageMainlandSwallowsShore(t *testing.T) {
	env, _ := newTestEnv(t)
	addLine(env, "COASTLINE", "", orb.LineString{{0.01, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0.01}})
	inside := addLine(env, "COASTLINE", "", square(0.4, 0.4, 0.1))
	outside := addLine(env, "COASTLINE", "", square(3, 3, 0.1))

	res, err := (&CoastStage{Options: DefaultCoastOptions()}).Run(context.Background(), env)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Counters["closed"])
	assert.Equal(t, 1, res.Counters["mainland"])
	assert.Equal(t, 1, res.Counters["swallowed"])
	assert.Equal(t, 1, res.Unresolved)

	_, err = env.Data.Lines.Get(inside)
	assert.Error(t, err)
	assert.Equal(t, feature.Elevation{}, typeOf(t, env, outside))

	shore := env.Data.Lines.Select(store.Shore())
	require.Len(t, shore, 2)
	var main *feature.Feature
	for _, id := range shore {
		f, err := env.Data.Lines.Get(id)
		require.NoError(t, err)
		if f.Name == MainlandName {
			main = &f
		}
	}
	require.NotNil(t, main)
	poly, err := polygonOf(env.Data.Lines, main.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, geometry.Area(poly), 0.005)
}

func TestCoastStageSplitsDryLakes(t *testing.T) {
	env, _ := newTestEnv(t)
	// Two basins joined by a river mouth 0.01 wide.
	id := addLine(env, "COASTLINE", "", orb.LineString{
		{0, 0}, {1, 0}, {1, 0.495}, {1.2, 0.495}, {1.2, 0}, {2.2, 0}, {2.2, 1},
		{1.2, 1}, {1.2, 0.505}, {1, 0.505}, {1, 1}, {0, 1}, {0, 0},
	})

	opts := DefaultCoastOptions()
	opts.Mainland = false
	res, err := (&CoastStage{Options: opts}).Run(context.Background(), env)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Counters["lake_candidates"])
	assert.Equal(t, 2, res.Counters["shore"])
	assert.Equal(t, 0, res.Unresolved)

	_, err = env.Data.Lines.Get(id)
	assert.Error(t, err, "split ring is replaced")

	shore := env.Data.Lines.Select(store.Shore())
	require.Len(t, shore, 2)
	for _, sid := range shore {
		f, err := env.Data.Lines.Get(sid)
		require.NoError(t, err)
		assert.True(t, geometry.IsClosed(f.Geometry))
		assert.InDelta(t, 4.0, geometry.Length(f.Geometry), 0.1)
		assert.Equal(t, "nameless", f.Name)
	}
}
