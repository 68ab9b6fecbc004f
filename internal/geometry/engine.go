// Package geometry defines the geometry engine the topology algorithms are
// sequenced against and implements it on top of GEOS.
//
// Geometry values are orb geometries everywhere in the module. The engine
// converts them to GEOS at the call boundary (via WKB) and converts results
// back, so callers never hold engine-owned handles.
package geometry

import "github.com/paulmach/orb"

// Engine provides the set operations, measures and predicates that need a
// real geometry kernel. Vertex-level operations (endpoints, vertex removal,
// closing tests) are plain functions in this package.
type Engine interface {
	// Union returns the union of all geometries. An empty input yields an
	// empty collection.
	Union(geoms ...orb.Geometry) (orb.Geometry, error)

	// Buffer grows (radius > 0) or shrinks (radius < 0) a geometry.
	Buffer(g orb.Geometry, radius float64) (orb.Geometry, error)

	// Boundary returns the topological boundary of g.
	Boundary(g orb.Geometry) (orb.Geometry, error)

	// LineMerge sews the lines of g into maximal simple lines.
	LineMerge(g orb.Geometry) ([]orb.LineString, error)

	Intersection(a, b orb.Geometry) (orb.Geometry, error)
	Difference(a, b orb.Geometry) (orb.Geometry, error)
	Distance(a, b orb.Geometry) (float64, error)

	// NearestPoint returns the point of target closest to from.
	NearestPoint(target orb.Geometry, from orb.Point) (orb.Point, error)

	// Covers reports whether no point of b lies outside a.
	Covers(a, b orb.Geometry) (bool, error)
	Intersects(a, b orb.Geometry) (bool, error)

	MakeValid(g orb.Geometry) (orb.Geometry, error)

	// MedialAxis approximates the skeleton of a polygon.
	MedialAxis(p orb.Polygon) (orb.Geometry, error)
}
