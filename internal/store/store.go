// Package store holds features and answers the spatial queries the topology
// algorithms need.
//
// Metadata filtering happens here; every geometric predicate is forwarded to
// the geometry engine. An R-tree over feature bounds keeps the candidate sets
// small.
package store

import (
	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/paulmach/orb"
)

// Store is the feature persistence contract of one partition.
type Store interface {
	// Get returns a copy of the feature. Unknown ids are an error.
	Get(id int64) (feature.Feature, error)

	// Insert stores f under a fresh id and returns it. f.ID is ignored.
	Insert(f feature.Feature) int64

	// Update replaces the fields set in u.
	Update(id int64, u Update) error

	// Delete removes the feature permanently.
	Delete(id int64) error

	// NearestWithin returns features closer than radius to g, nearest
	// first. Ties keep id order.
	NearestWithin(g orb.Geometry, radius float64, filter Filter) ([]Neighbor, error)

	// Covering returns, in id order, the features whose enclosed area
	// covers g. Only closed lines and polygons enclose an area.
	Covering(g orb.Geometry, filter Filter) ([]int64, error)

	// UnionOf returns the union of every matching geometry. No match yields
	// an empty collection.
	UnionOf(filter Filter) (orb.Geometry, error)

	// Select returns the ids of matching features in id order.
	Select(filter Filter) []int64

	// Len returns the number of live features.
	Len() int
}

// Update lists the fields to replace. Nil fields are left unchanged.
type Update struct {
	Geometry orb.Geometry
	Type     feature.Type
	Name     *string
}

// Neighbor is a query hit with its distance to the query geometry.
type Neighbor struct {
	ID       int64
	Distance float64
}

// Filter selects features by metadata. A nil Filter matches everything.
type Filter func(f *feature.Feature) bool

func (fl Filter) match(f *feature.Feature) bool {
	return fl == nil || fl(f)
}

// Name returns a pointer to name, for use in Update.
func Name(name string) *string {
	return &name
}
