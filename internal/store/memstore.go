package store

import (
	"sort"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/paulmach/orb"
)

// MemStore is an in-memory Store for one partition. It records every
// mutation in a journal so the run can be committed as a whole.
//
// MemStore is not safe for concurrent use.
type MemStore struct {
	partition feature.Partition
	engine    geometry.Engine
	seq       *Sequence

	features map[int64]*entry
	index    *spatialIndex
	journal  *journal
}

type entry struct {
	feature feature.Feature
	indexed *indexedFeature
}

// NewMemStore returns an empty store drawing ids from seq.
func NewMemStore(partition feature.Partition, engine geometry.Engine, seq *Sequence) *MemStore {
	return &MemStore{
		partition: partition,
		engine:    engine,
		seq:       seq,
		features:  make(map[int64]*entry),
		index:     newSpatialIndex(),
		journal:   newJournal(),
	}
}

// Partition returns the partition the store holds.
func (s *MemStore) Partition() feature.Partition {
	return s.partition
}

// Load adds a feature that already exists outside the run, keeping its id.
// Loaded features are not journaled until they change.
func (s *MemStore) Load(f feature.Feature) error {
	if _, ok := s.features[f.ID]; ok {
		return &ErrDuplicateFeature{ID: f.ID, Partition: s.partition}
	}
	s.seq.Observe(f.ID)
	s.put(f.Clone())
	return nil
}

func (s *MemStore) put(f feature.Feature) {
	e := &entry{feature: f}
	if !geometry.IsEmpty(f.Geometry) {
		e.indexed = s.index.insert(f.ID, f.Geometry.Bound())
	}
	s.features[f.ID] = e
}

func (s *MemStore) lookup(id int64) (*entry, error) {
	e, ok := s.features[id]
	if !ok {
		return nil, &ErrUnknownFeature{ID: id, Partition: s.partition}
	}
	return e, nil
}

// Get returns a copy of the feature with the given id.
func (s *MemStore) Get(id int64) (feature.Feature, error) {
	e, err := s.lookup(id)
	if err != nil {
		return feature.Feature{}, err
	}
	return e.feature.Clone(), nil
}

// Insert stores f under a fresh id.
func (s *MemStore) Insert(f feature.Feature) int64 {
	f = f.Clone()
	f.ID = s.seq.Next()
	if f.Name == "" {
		f.Name = feature.DefaultName
	}
	s.put(f)
	s.journal.inserted(f.ID)
	return f.ID
}

// Update replaces the fields set in u.
func (s *MemStore) Update(id int64, u Update) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	if u.Geometry != nil {
		if e.indexed != nil {
			s.index.remove(e.indexed)
			e.indexed = nil
		}
		e.feature.Geometry = orb.Clone(u.Geometry)
		if !geometry.IsEmpty(u.Geometry) {
			e.indexed = s.index.insert(id, u.Geometry.Bound())
		}
	}
	if u.Type != nil {
		e.feature.Type = u.Type
	}
	if u.Name != nil {
		e.feature.Name = *u.Name
	}
	s.journal.modified(id)
	return nil
}

// Delete removes the feature.
func (s *MemStore) Delete(id int64) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	if e.indexed != nil {
		s.index.remove(e.indexed)
	}
	delete(s.features, id)
	s.journal.deleted(id)
	return nil
}

// candidates returns the matching features whose bounds intersect b, in id
// order.
func (s *MemStore) candidates(b orb.Bound, filter Filter) []*feature.Feature {
	ids := s.index.search(b.Pad(minExtent))
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*feature.Feature, 0, len(ids))
	for _, id := range ids {
		e := s.features[id]
		if e == nil || !filter.match(&e.feature) {
			continue
		}
		out = append(out, &e.feature)
	}
	return out
}

// NearestWithin returns the matching features closer than radius to g.
func (s *MemStore) NearestWithin(g orb.Geometry, radius float64, filter Filter) ([]Neighbor, error) {
	if geometry.IsEmpty(g) {
		return nil, nil
	}
	var out []Neighbor
	for _, f := range s.candidates(g.Bound().Pad(radius), filter) {
		d, err := s.engine.Distance(g, f.Geometry)
		if err != nil {
			return nil, err
		}
		if d < radius {
			out = append(out, Neighbor{ID: f.ID, Distance: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

// Covering returns the matching features whose area covers g.
func (s *MemStore) Covering(g orb.Geometry, filter Filter) ([]int64, error) {
	if geometry.IsEmpty(g) {
		return nil, nil
	}
	var out []int64
	for _, f := range s.candidates(g.Bound(), filter) {
		area, ok := geometry.AreaOf(f.Geometry)
		if !ok {
			continue
		}
		covers, err := s.engine.Covers(area, g)
		if err != nil {
			return nil, err
		}
		if covers {
			out = append(out, f.ID)
		}
	}
	return out, nil
}

// UnionOf returns the union of every matching geometry.
func (s *MemStore) UnionOf(filter Filter) (orb.Geometry, error) {
	var geoms []orb.Geometry
	for _, id := range s.Select(filter) {
		geoms = append(geoms, s.features[id].feature.Geometry)
	}
	return s.engine.Union(geoms...)
}

// Select returns the ids of matching features in id order.
func (s *MemStore) Select(filter Filter) []int64 {
	ids := make([]int64, 0)
	for id, e := range s.features {
		if filter.match(&e.feature) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of live features.
func (s *MemStore) Len() int {
	return len(s.features)
}

// Changes returns the net mutations of the run, in id order.
func (s *MemStore) Changes() []Change {
	return s.journal.changes()
}

// Features returns copies of all live features in id order.
func (s *MemStore) Features() []feature.Feature {
	ids := s.Select(nil)
	out := make([]feature.Feature, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.features[id].feature.Clone())
	}
	return out
}
