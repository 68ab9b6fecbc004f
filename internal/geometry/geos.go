package geometry

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/planar"
	"github.com/twpayne/go-geos"
)

// quadSegments is the number of segments used to approximate a quarter
// circle when buffering.
const quadSegments = 8

// medialAxisSamples is the number of boundary samples per ring used to build
// the Voronoi diagram behind MedialAxis.
const medialAxisSamples = 256

// GEOS implements Engine with the GEOS library.
//
// A GEOS engine owns one GEOS context and is not safe for concurrent use.
type GEOS struct {
	ctx *geos.Context
}

// NewGEOS returns an engine backed by a fresh GEOS context.
func NewGEOS() *GEOS {
	return &GEOS{ctx: geos.NewContext()}
}

// toGEOS converts an orb geometry into a GEOS geometry.
// Empty geometries become an empty collection since WKB cannot carry them.
func (e *GEOS) toGEOS(op string, g orb.Geometry) (*geos.Geom, error) {
	if g == nil {
		return nil, &ErrUnsupportedGeometry{Op: op}
	}
	if IsEmpty(g) {
		return e.ctx.NewGeomFromWKT("GEOMETRYCOLLECTION EMPTY")
	}
	data, err := wkb.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("%s: encode wkb: %w", op, err)
	}
	geom, err := e.ctx.NewGeomFromWKB(data)
	if err != nil {
		return nil, fmt.Errorf("%s: decode wkb: %w", op, err)
	}
	return geom, nil
}

// fromGEOS converts a GEOS result back into an orb geometry.
func (e *GEOS) fromGEOS(op string, g *geos.Geom) (orb.Geometry, error) {
	if g == nil {
		return nil, &ErrEmptyResult{Op: op}
	}
	if g.IsEmpty() {
		return orb.Collection{}, nil
	}
	geom, err := wkb.Unmarshal(g.ToWKB())
	if err != nil {
		return nil, fmt.Errorf("%s: decode result: %w", op, err)
	}
	return geom, nil
}

func (e *GEOS) pair(op string, a, b orb.Geometry) (*geos.Geom, *geos.Geom, error) {
	ga, err := e.toGEOS(op, a)
	if err != nil {
		return nil, nil, err
	}
	gb, err := e.toGEOS(op, b)
	if err != nil {
		return nil, nil, err
	}
	return ga, gb, nil
}

// Union returns the union of all geometries.
func (e *GEOS) Union(geoms ...orb.Geometry) (orb.Geometry, error) {
	coll := make(orb.Collection, 0, len(geoms))
	for _, g := range geoms {
		if g == nil || IsEmpty(g) {
			continue
		}
		coll = append(coll, g)
	}
	if len(coll) == 0 {
		return orb.Collection{}, nil
	}
	g, err := e.toGEOS("union", coll)
	if err != nil {
		return nil, err
	}
	return e.fromGEOS("union", g.UnaryUnion())
}

// Buffer grows or shrinks g by radius.
func (e *GEOS) Buffer(g orb.Geometry, radius float64) (orb.Geometry, error) {
	gg, err := e.toGEOS("buffer", g)
	if err != nil {
		return nil, err
	}
	return e.fromGEOS("buffer", gg.Buffer(radius, quadSegments))
}

// Boundary returns the boundary of g.
func (e *GEOS) Boundary(g orb.Geometry) (orb.Geometry, error) {
	gg, err := e.toGEOS("boundary", g)
	if err != nil {
		return nil, err
	}
	return e.fromGEOS("boundary", gg.Boundary())
}

// LineMerge merges the lines of g and returns the pieces ordered by length,
// longest first. Non-line parts are ignored.
func (e *GEOS) LineMerge(g orb.Geometry) ([]orb.LineString, error) {
	gg, err := e.toGEOS("lineMerge", g)
	if err != nil {
		return nil, err
	}
	merged, err := e.fromGEOS("lineMerge", gg.LineMerge())
	if err != nil {
		return nil, err
	}
	lines := Lines(merged)
	sort.SliceStable(lines, func(i, j int) bool {
		return planar.Length(lines[i]) > planar.Length(lines[j])
	})
	return lines, nil
}

// Intersection returns the intersection of a and b.
func (e *GEOS) Intersection(a, b orb.Geometry) (orb.Geometry, error) {
	ga, gb, err := e.pair("intersection", a, b)
	if err != nil {
		return nil, err
	}
	return e.fromGEOS("intersection", ga.Intersection(gb))
}

// Difference returns the part of a not in b.
func (e *GEOS) Difference(a, b orb.Geometry) (orb.Geometry, error) {
	ga, gb, err := e.pair("difference", a, b)
	if err != nil {
		return nil, err
	}
	return e.fromGEOS("difference", ga.Difference(gb))
}

// Distance returns the minimum cartesian distance between a and b.
func (e *GEOS) Distance(a, b orb.Geometry) (float64, error) {
	if IsEmpty(a) || IsEmpty(b) {
		return 0, &ErrEmptyResult{Op: "distance"}
	}
	ga, gb, err := e.pair("distance", a, b)
	if err != nil {
		return 0, err
	}
	return ga.Distance(gb), nil
}

// NearestPoint returns the point on target closest to from.
func (e *GEOS) NearestPoint(target orb.Geometry, from orb.Point) (orb.Point, error) {
	if IsEmpty(target) {
		return orb.Point{}, &ErrEmptyResult{Op: "nearestPoint"}
	}
	gt, gp, err := e.pair("nearestPoint", target, from)
	if err != nil {
		return orb.Point{}, err
	}
	coords := gt.NearestPoints(gp)
	if len(coords) < 1 || len(coords[0]) < 2 {
		return orb.Point{}, &ErrEmptyResult{Op: "nearestPoint"}
	}
	return orb.Point{coords[0][0], coords[0][1]}, nil
}

// Covers reports whether a covers b.
func (e *GEOS) Covers(a, b orb.Geometry) (bool, error) {
	if IsEmpty(a) || IsEmpty(b) {
		return false, nil
	}
	ga, gb, err := e.pair("covers", a, b)
	if err != nil {
		return false, err
	}
	return ga.Covers(gb), nil
}

// Intersects reports whether a and b share any point.
func (e *GEOS) Intersects(a, b orb.Geometry) (bool, error) {
	if IsEmpty(a) || IsEmpty(b) {
		return false, nil
	}
	ga, gb, err := e.pair("intersects", a, b)
	if err != nil {
		return false, err
	}
	return ga.Intersects(gb), nil
}

// MakeValid repairs an invalid geometry.
func (e *GEOS) MakeValid(g orb.Geometry) (orb.Geometry, error) {
	gg, err := e.toGEOS("makeValid", g)
	if err != nil {
		return nil, err
	}
	if gg.IsValid() {
		return g, nil
	}
	return e.fromGEOS("makeValid", gg.MakeValid())
}

// MedialAxis approximates the skeleton of p from the Voronoi diagram of
// densely sampled boundary points. Voronoi edges with both ends inside p
// form the axis; edges leaving p are the ribs between neighbouring samples
// and are dropped.
func (e *GEOS) MedialAxis(p orb.Polygon) (orb.Geometry, error) {
	if len(p) == 0 || len(p[0]) < 4 {
		return nil, &ErrUnsupportedGeometry{Op: "medialAxis", Geometry: p}
	}
	step := planar.Length(p[0]) / medialAxisSamples
	var sites orb.MultiPoint
	for _, ring := range p {
		sites = append(sites, Densify(orb.LineString(ring), step)...)
	}
	gs, err := e.toGEOS("medialAxis", sites)
	if err != nil {
		return nil, err
	}
	edges, err := e.fromGEOS("medialAxis", gs.VoronoiDiagram(nil, 0, true))
	if err != nil {
		return nil, err
	}

	var axis orb.MultiLineString
	for _, edge := range Lines(edges) {
		if len(edge) < 2 {
			continue
		}
		if planar.PolygonContains(p, edge[0]) && planar.PolygonContains(p, edge[len(edge)-1]) {
			axis = append(axis, edge)
		}
	}
	if len(axis) == 0 {
		return nil, &ErrEmptyResult{Op: "medialAxis"}
	}
	return axis, nil
}
