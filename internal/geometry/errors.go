package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
)

// ErrEmptyResult indicates the engine returned an empty geometry where one is
// structurally required.
type ErrEmptyResult struct {
	Op string
}

func (e *ErrEmptyResult) Error() string {
	return fmt.Sprintf("geometry engine: %s returned an empty geometry", e.Op)
}

// ErrUnsupportedGeometry indicates an operation received a geometry kind it
// cannot handle.
type ErrUnsupportedGeometry struct {
	Op       string
	Geometry orb.Geometry
}

func (e *ErrUnsupportedGeometry) Error() string {
	if e.Geometry == nil {
		return fmt.Sprintf("geometry engine: %s: nil geometry", e.Op)
	}
	return fmt.Sprintf("geometry engine: %s: unsupported geometry %s", e.Op, e.Geometry.GeoJSONType())
}

// ErrVertexIndex indicates a vertex index outside the line.
type ErrVertexIndex struct {
	Index     int
	NumPoints int
}

func (e *ErrVertexIndex) Error() string {
	return fmt.Sprintf("vertex index %d out of range for line with %d points", e.Index, e.NumPoints)
}
