package store

import (
	"testing"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLines(t *testing.T) *MemStore {
	t.Helper()
	return NewMemStore(feature.Lines, geometry.NewGEOS(), NewSequence(100000))
}

func square(x, y, size float64) orb.LineString {
	return orb.LineString{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}
}

func TestMemStoreRoundTrip(t *testing.T) {
	s := newLines(t)
	line := orb.LineString{{0, 0}, {1, 0.5}, {2, 0}}

	id := s.Insert(feature.Feature{
		Type:     feature.MustParseType("ROADS"),
		Style:    "stroke: #000",
		Geometry: line,
	})
	assert.Equal(t, int64(100000), id)

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, feature.DefaultName, got.Name)
	assert.Equal(t, "stroke: #000", got.Style)
	assert.Equal(t, feature.MustParseType("ROADS"), got.Type)
	assert.True(t, orb.Equal(line, got.Geometry))

	// The store keeps its own copy.
	line[0] = orb.Point{9, 9}
	got, err = s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{0, 0}, got.Geometry.(orb.LineString)[0])
}

func TestMemStoreUnknownFeature(t *testing.T) {
	s := newLines(t)

	_, err := s.Get(42)
	var unknown *ErrUnknownFeature
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, int64(42), unknown.ID)

	assert.ErrorAs(t, s.Delete(42), &unknown)
	assert.ErrorAs(t, s.Update(42, Update{Name: Name("x")}), &unknown)
}

func TestMemStoreLoadDuplicate(t *testing.T) {
	s := newLines(t)
	f := feature.Feature{ID: 7, Type: feature.Elevation{}, Geometry: square(0, 0, 1)}
	require.NoError(t, s.Load(f))

	var dup *ErrDuplicateFeature
	assert.ErrorAs(t, s.Load(f), &dup)
}

func TestMemStoreNearestWithin(t *testing.T) {
	s := newLines(t)
	far := s.Insert(feature.Feature{Type: feature.Elevation{}, Geometry: orb.LineString{{0, 3}, {1, 3}}})
	near := s.Insert(feature.Feature{Type: feature.Elevation{}, Geometry: orb.LineString{{0, 1}, {1, 1}}})
	touching := s.Insert(feature.Feature{Type: feature.Elevation{}, Geometry: orb.LineString{{0, 0}, {1, 0}}})
	s.Insert(feature.Feature{Type: feature.MustParseType("ROADS"), Geometry: orb.LineString{{0, 0.5}, {1, 0.5}}})

	hits, err := s.NearestWithin(orb.Point{0.5, 0}, 2, Elevated())
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, touching, hits[0].ID)
	assert.InDelta(t, 0, hits[0].Distance, 1e-12)
	assert.Equal(t, near, hits[1].ID)
	assert.InDelta(t, 1, hits[1].Distance, 1e-12)

	hits, err = s.NearestWithin(orb.Point{0.5, 0}, 4, Elevated())
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, far, hits[2].ID)
}

func TestMemStoreCovering(t *testing.T) {
	s := newLines(t)
	outer := s.Insert(feature.Feature{Type: feature.Elevation{Meters: 500}, Geometry: square(0, 0, 10)})
	inner := s.Insert(feature.Feature{Type: feature.Elevation{Meters: 1000}, Geometry: square(2, 2, 2)})
	s.Insert(feature.Feature{Type: feature.Elevation{Meters: 500}, Geometry: orb.LineString{{0, 0}, {20, 20}}})

	ids, err := s.Covering(orb.Point{3, 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{outer, inner}, ids)

	ids, err = s.Covering(orb.Point{7, 7}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{outer}, ids)

	ids, err = s.Covering(orb.Point{30, 30}, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemStoreUnionOfNothing(t *testing.T) {
	s := newLines(t)
	s.Insert(feature.Feature{Type: feature.MustParseType("ROADS"), Geometry: orb.LineString{{0, 0}, {1, 0}}})

	u, err := s.UnionOf(Shore())
	require.NoError(t, err)
	assert.True(t, geometry.IsEmpty(u))
}

func TestMemStoreUpdateReindexes(t *testing.T) {
	s := newLines(t)
	id := s.Insert(feature.Feature{Type: feature.Elevation{}, Geometry: orb.LineString{{0, 0}, {1, 0}}})

	require.NoError(t, s.Update(id, Update{Geometry: orb.LineString{{50, 50}, {51, 50}}}))

	hits, err := s.NearestWithin(orb.Point{0, 0}, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = s.NearestWithin(orb.Point{50, 50}, 1, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, id, hits[0].ID)
}

func TestMemStoreJournal(t *testing.T) {
	s := newLines(t)
	require.NoError(t, s.Load(feature.Feature{ID: 1, Type: feature.MustParseType("COASTLINE"), Geometry: orb.LineString{{0, 0}, {1, 0}}}))
	require.NoError(t, s.Load(feature.Feature{ID: 2, Type: feature.MustParseType("COASTLINE"), Geometry: orb.LineString{{1, 0}, {2, 0}}}))
	require.NoError(t, s.Load(feature.Feature{ID: 3, Type: feature.MustParseType("COASTLINE"), Geometry: orb.LineString{{2, 0}, {3, 0}}}))

	require.NoError(t, s.Update(1, Update{Type: feature.Elevation{}}))
	require.NoError(t, s.Update(1, Update{Name: Name("main")}))
	require.NoError(t, s.Delete(2))

	tmp := s.Insert(feature.Feature{Type: feature.Elevation{}, Geometry: orb.LineString{{5, 5}, {6, 6}}})
	require.NoError(t, s.Update(tmp, Update{Name: Name("bridge")}))
	require.NoError(t, s.Delete(tmp))

	kept := s.Insert(feature.Feature{Type: feature.Elevation{}, Geometry: orb.LineString{{7, 7}, {8, 8}}})

	assert.Equal(t, []Change{
		{ID: 1, Instruction: Modify},
		{ID: 2, Instruction: Delete},
		{ID: kept, Instruction: Insert},
	}, s.Changes())
	assert.Equal(t, 3, s.Len())
}

func TestSequenceObserve(t *testing.T) {
	seq := NewSequence(100)
	seq.Observe(5)
	assert.Equal(t, int64(100), seq.Next())
	seq.Observe(250)
	assert.Equal(t, int64(251), seq.Next())
	assert.Equal(t, int64(252), seq.Next())
}

func TestDatasetSharesSequence(t *testing.T) {
	d := NewDataset("harn", geometry.NewGEOS(), 100000)
	require.NoError(t, d.Lines.Load(feature.Feature{ID: 200000, Type: feature.Elevation{}, Geometry: orb.LineString{{0, 0}, {1, 0}}}))

	a := d.Points.Insert(feature.Feature{Type: feature.MustParseType("PEAK"), Geometry: orb.Point{0, 0}})
	b := d.Polygons.Insert(feature.Feature{Type: feature.Vegetation{Class: "FOREST"}, Geometry: orb.Polygon{orb.Ring(square(0, 0, 1))}})

	assert.Equal(t, int64(200001), a)
	assert.Equal(t, int64(200002), b)
	assert.Equal(t, "harn_pts", d.Table(feature.Points))
	assert.Same(t, d.Polygons, d.Partition(feature.Polygons))
}
