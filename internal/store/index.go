package store

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// minExtent is the smallest side of an indexed rectangle. The R-tree
// requires non-zero dimensions, so points and axis-parallel lines are padded.
const minExtent = 1e-9

// spatialIndex is an R-tree over feature bounds.
type spatialIndex struct {
	rtree *rtreego.Rtree
}

// indexedFeature wraps a feature id for R-tree storage. The bounds are
// captured at insert time so the entry can be found again for deletion
// after the feature's geometry changed.
type indexedFeature struct {
	id     int64
	bounds orb.Bound
}

// Bounds implements rtreego.Spatial.
func (f *indexedFeature) Bounds() rtreego.Rect {
	return boundRect(f.bounds)
}

func newSpatialIndex() *spatialIndex {
	return &spatialIndex{rtree: rtreego.NewTree(2, 25, 50)}
}

func boundRect(b orb.Bound) rtreego.Rect {
	point := rtreego.Point{b.Min[0], b.Min[1]}

	width := b.Max[0] - b.Min[0]
	height := b.Max[1] - b.Min[1]
	if width < minExtent {
		width = minExtent
	}
	if height < minExtent {
		height = minExtent
	}

	rect, _ := rtreego.NewRect(point, []float64{width, height})
	return rect
}

func (idx *spatialIndex) insert(id int64, b orb.Bound) *indexedFeature {
	entry := &indexedFeature{id: id, bounds: b}
	idx.rtree.Insert(entry)
	return entry
}

func (idx *spatialIndex) remove(entry *indexedFeature) {
	idx.rtree.Delete(entry)
}

// search returns the ids of entries whose bounds intersect b.
func (idx *spatialIndex) search(b orb.Bound) []int64 {
	spatials := idx.rtree.SearchIntersect(boundRect(b))
	ids := make([]int64, 0, len(spatials))
	for _, s := range spatials {
		ids = append(ids, s.(*indexedFeature).id)
	}
	return ids
}
