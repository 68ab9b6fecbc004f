package topology

import (
	"testing"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealLineIdempotent(t *testing.T) {
	e := newEnv(t)
	h := NewHealer(e.lines, e.engine, e.log)
	id := e.line("COASTLINE", orb.LineString{{0, 0}, {1, 0}, {1, 1}, {2, 1}, {2, 2}})

	require.NoError(t, h.HealLine(id))
	first := e.get(t, id).Geometry

	require.NoError(t, h.HealLine(id))
	second := e.get(t, id).Geometry

	assert.True(t, orb.Equal(first, second))
	assert.Equal(t, 0, h.Dropped)
}

func TestHealLineSkipsUnchangedGeometry(t *testing.T) {
	e := newEnv(t)
	h := NewHealer(e.lines, e.engine, e.log)
	id := e.line("ROADS", orb.LineString{{0, 0}, {1, 0}, {1, 1}, {2, 1}})
	require.NoError(t, h.HealLine(id))
	clean := e.get(t, id).Geometry

	require.NoError(t, e.lines.Load(feature.Feature{ID: 5, Type: feature.MustParseType("ROADS"), Geometry: clean}))
	require.NoError(t, h.HealLine(5))

	for _, c := range e.lines.Changes() {
		assert.NotEqual(t, int64(5), c.ID, "clean loaded line is not journaled")
	}
}

func TestMergeLineDropsShortestPieces(t *testing.T) {
	e := newEnv(t)
	h := NewHealer(e.lines, e.engine, e.log)

	bag := []orb.Geometry{
		orb.LineString{{0, 0}, {5, 0}},
		orb.LineString{{5, 0}, {10, 0}},
		orb.LineString{{0, 3}, {0, 4}},
		orb.LineString{{20, 20}, {20, 20.5}},
	}
	line, err := h.MergeLine(1, bag)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, geometry.Length(line), 1e-9)
	assert.Equal(t, 2, h.Dropped)
	assert.Len(t, bag, 4, "caller's bag is left alone")
}

func TestMergeLineEmptyBag(t *testing.T) {
	e := newEnv(t)
	h := NewHealer(e.lines, e.engine, e.log)

	_, err := h.MergeLine(7, nil)
	var empty *ErrEmptyBag
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, int64(7), empty.ID)
}

func TestHealLineUnknownFeature(t *testing.T) {
	e := newEnv(t)
	h := NewHealer(e.lines, e.engine, e.log)
	assert.Error(t, h.HealLine(12345))
}

func TestHealRingsSingle(t *testing.T) {
	e := newEnv(t)
	h := NewHealer(e.lines, e.engine, e.log)
	id := e.line("COASTLINE", square(0, 0, 1))

	placeholder := feature.Feature{Name: "nameless", Type: feature.MustParseType(feature.TmpLake)}
	ids, err := h.HealRings(id, []orb.Geometry{square(0, 0, 1), square(3, 3, 0.001)}, 0.015, placeholder)
	require.NoError(t, err)
	require.Equal(t, []int64{id}, ids)

	f := e.get(t, id)
	assert.Equal(t, "nameless", f.Name)
	assert.True(t, feature.IsLakeBody(f.Type))
	assert.True(t, geometry.IsClosed(f.Geometry))
	assert.InDelta(t, 4.0, geometry.Length(f.Geometry), 1e-9)
	assert.Equal(t, 1, h.Dropped)
}

func TestHealRingsSplit(t *testing.T) {
	e := newEnv(t)
	h := NewHealer(e.lines, e.engine, e.log)
	id := e.line("COASTLINE", square(0, 0, 1))

	placeholder := feature.Feature{Name: "nameless", Type: feature.MustParseType(feature.TmpLake)}
	bag := []orb.Geometry{square(0, 0, 2), square(5, 5, 1)}
	ids, err := h.HealRings(id, bag, 0.015, placeholder)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	_, err = e.lines.Get(id)
	assert.Error(t, err, "superseded feature is deleted")

	assert.InDelta(t, 8.0, geometry.Length(e.get(t, ids[0]).Geometry), 1e-9)
	assert.InDelta(t, 4.0, geometry.Length(e.get(t, ids[1]).Geometry), 1e-9)
	for _, ringID := range ids {
		assert.True(t, feature.IsLakeBody(e.get(t, ringID).Type))
	}
}

func TestHealRingsFromPolygon(t *testing.T) {
	e := newEnv(t)
	h := NewHealer(e.lines, e.engine, e.log)
	id := e.line("COASTLINE", square(0, 0, 1))

	poly, err := geometry.MakePolygon(square(0, 0, 1))
	require.NoError(t, err)

	ids, err := h.HealRings(id, []orb.Geometry{poly}, 0.015, feature.Feature{Name: "-", Type: feature.Elevation{}})
	require.NoError(t, err)
	require.Equal(t, []int64{id}, ids)
	assert.True(t, geometry.IsClosed(e.get(t, id).Geometry))
}
