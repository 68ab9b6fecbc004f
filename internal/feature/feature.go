// Package feature defines the persisted feature record and its structured
// type tag.
package feature

import "github.com/paulmach/orb"

// DefaultName is the placeholder name of synthetic features.
const DefaultName = "-"

// Partition identifies the logical table a feature lives in.
type Partition int

const (
	// Lines holds open and closed polylines (coastlines, contours, streams, roads, lake rings).
	Lines Partition = iota
	// Points holds markers (elevation labels, peaks, settlements).
	Points
	// Polygons holds area features (vegetation).
	Polygons
)

// Partitions lists every partition in load/commit order.
var Partitions = []Partition{Lines, Points, Polygons}

// String returns the table suffix of the partition.
func (p Partition) String() string {
	switch p {
	case Lines:
		return "lines"
	case Points:
		return "pts"
	case Polygons:
		return "polys"
	default:
		return "unknown"
	}
}

// Feature is the unit of persisted geometry.
type Feature struct {
	ID       int64
	Name     string
	Type     Type
	Style    string
	Geometry orb.Geometry
}

// Clone returns a deep copy of f.
func (f Feature) Clone() Feature {
	if f.Geometry != nil {
		f.Geometry = orb.Clone(f.Geometry)
	}
	return f
}
