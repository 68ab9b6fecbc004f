package topology

import (
	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

// Healer collapses fragment bags into clean geometry.
type Healer struct {
	store  store.Store
	engine geometry.Engine
	log    logrus.FieldLogger

	// Dropped counts fragments discarded while healing.
	Dropped int
}

// NewHealer returns a healer committing to s.
func NewHealer(s store.Store, engine geometry.Engine, log logrus.FieldLogger) *Healer {
	return &Healer{store: s, engine: engine, log: log}
}

// MergeLine merges the bag into a single line. While the merge leaves more
// than one piece, the shortest piece is dropped and the rest merged again.
func (h *Healer) MergeLine(id int64, bag []orb.Geometry) (orb.LineString, error) {
	for {
		if len(bag) == 0 {
			return nil, &ErrEmptyBag{ID: id}
		}
		union, err := h.engine.Union(bag...)
		if err != nil {
			return nil, err
		}
		pieces, err := h.engine.LineMerge(union)
		if err != nil {
			return nil, err
		}
		switch len(pieces) {
		case 0:
			return nil, &ErrEmptyBag{ID: id}
		case 1:
			return pieces[0], nil
		}

		h.Dropped++
		h.log.WithFields(logrus.Fields{
			"id":     id,
			"pieces": len(pieces),
			"length": geometry.Length(pieces[len(pieces)-1]),
		}).Debug("drop shortest piece")

		bag = make([]orb.Geometry, 0, len(pieces)-1)
		for _, p := range pieces[:len(pieces)-1] {
			bag = append(bag, p)
		}
	}
}

// HealLine merges the bag and commits the result as the new geometry of id.
// An empty bag heals the feature's own geometry. A result equal to the
// current geometry is not written.
func (h *Healer) HealLine(id int64, bag ...orb.Geometry) error {
	f, err := h.store.Get(id)
	if err != nil {
		return err
	}
	if len(bag) == 0 {
		bag = []orb.Geometry{f.Geometry}
	}
	line, err := h.MergeLine(id, bag)
	if err != nil {
		return err
	}
	if f.Geometry != nil && orb.Equal(f.Geometry, line) {
		return nil
	}
	return h.store.Update(id, store.Update{Geometry: line})
}

// MergeRings reduces the bag to disjoint rings, longest first. Polygonal
// unions are replaced by their boundary; pieces no longer than noise are
// dropped one at a time, shortest first.
func (h *Healer) MergeRings(id int64, bag []orb.Geometry, noise float64) ([]orb.LineString, error) {
	for {
		if len(bag) == 0 {
			return nil, &ErrEmptyBag{ID: id}
		}
		union, err := h.engine.Union(bag...)
		if err != nil {
			return nil, err
		}
		if len(geometry.Polygons(union)) > 0 {
			if union, err = h.engine.Boundary(union); err != nil {
				return nil, err
			}
		}
		rings, err := h.engine.LineMerge(union)
		if err != nil {
			return nil, err
		}
		if len(rings) == 0 {
			return nil, &ErrEmptyBag{ID: id}
		}
		if geometry.Length(rings[len(rings)-1]) > noise {
			return rings, nil
		}

		h.Dropped++
		h.log.WithFields(logrus.Fields{
			"id":     id,
			"rings":  len(rings),
			"length": geometry.Length(rings[len(rings)-1]),
		}).Debug("drop noise ring")

		bag = make([]orb.Geometry, 0, len(rings)-1)
		for _, r := range rings[:len(rings)-1] {
			bag = append(bag, r)
		}
	}
}

// HealRings heals a polygon group that supersedes feature id. One surviving
// ring replaces the geometry of id and takes the placeholder's type and
// name. Several rings each become a new feature like the placeholder and id
// is deleted. HealRings returns the ids now holding the rings.
func (h *Healer) HealRings(id int64, bag []orb.Geometry, noise float64, placeholder feature.Feature) ([]int64, error) {
	rings, err := h.MergeRings(id, bag, noise)
	if err != nil {
		return nil, err
	}

	if len(rings) == 1 {
		err := h.store.Update(id, store.Update{
			Geometry: rings[0],
			Type:     placeholder.Type,
			Name:     store.Name(placeholder.Name),
		})
		if err != nil {
			return nil, err
		}
		return []int64{id}, nil
	}

	ids := make([]int64, 0, len(rings))
	for _, r := range rings {
		f := placeholder
		f.Geometry = r
		ids = append(ids, h.store.Insert(f))
	}
	if err := h.store.Delete(id); err != nil {
		return nil, err
	}
	h.log.WithFields(logrus.Fields{"id": id, "rings": len(rings)}).Debug("split into rings")
	return ids, nil
}
