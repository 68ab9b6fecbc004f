package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// IsEmpty reports whether g carries no coordinates.
func IsEmpty(g orb.Geometry) bool {
	switch g := g.(type) {
	case nil:
		return true
	case orb.Point:
		return false
	case orb.MultiPoint:
		return len(g) == 0
	case orb.LineString:
		return len(g) == 0
	case orb.Ring:
		return len(g) == 0
	case orb.MultiLineString:
		for _, ls := range g {
			if len(ls) > 0 {
				return false
			}
		}
		return true
	case orb.Polygon:
		return len(g) == 0 || len(g[0]) == 0
	case orb.MultiPolygon:
		for _, p := range g {
			if !IsEmpty(p) {
				return false
			}
		}
		return true
	case orb.Collection:
		for _, c := range g {
			if !IsEmpty(c) {
				return false
			}
		}
		return true
	case orb.Bound:
		return false
	}
	return true
}

// IsClosed reports whether g is a line whose first and last vertex coincide.
// Polygons are always closed.
func IsClosed(g orb.Geometry) bool {
	switch g := g.(type) {
	case orb.LineString:
		return len(g) >= 4 && g[0].Equal(g[len(g)-1])
	case orb.Ring:
		return len(g) >= 4 && g.Closed()
	case orb.Polygon, orb.MultiPolygon:
		return !IsEmpty(g)
	}
	return false
}

// NumPoints returns the number of vertices of g.
func NumPoints(g orb.Geometry) int {
	switch g := g.(type) {
	case orb.Point:
		return 1
	case orb.MultiPoint:
		return len(g)
	case orb.LineString:
		return len(g)
	case orb.Ring:
		return len(g)
	case orb.MultiLineString:
		n := 0
		for _, ls := range g {
			n += len(ls)
		}
		return n
	case orb.Polygon:
		n := 0
		for _, r := range g {
			n += len(r)
		}
		return n
	case orb.MultiPolygon:
		n := 0
		for _, p := range g {
			n += NumPoints(p)
		}
		return n
	case orb.Collection:
		n := 0
		for _, c := range g {
			n += NumPoints(c)
		}
		return n
	}
	return 0
}

// Length returns the planar length of g. Polygons measure their rings.
func Length(g orb.Geometry) float64 {
	if IsEmpty(g) {
		return 0
	}
	return planar.Length(g)
}

// Area returns the planar area of g.
func Area(g orb.Geometry) float64 {
	if IsEmpty(g) {
		return 0
	}
	return planar.Area(g)
}

// StartPoint returns the first vertex of a line.
func StartPoint(ls orb.LineString) orb.Point {
	return ls[0]
}

// EndPoint returns the last vertex of a line.
func EndPoint(ls orb.LineString) orb.Point {
	return ls[len(ls)-1]
}

// MakePolygon builds a polygon from a closed ring.
func MakePolygon(g orb.Geometry) (orb.Polygon, error) {
	switch g := g.(type) {
	case orb.Polygon:
		return g, nil
	case orb.Ring:
		if !IsClosed(g) {
			return nil, &ErrUnsupportedGeometry{Op: "makePolygon", Geometry: g}
		}
		return orb.Polygon{g.Clone()}, nil
	case orb.LineString:
		if !IsClosed(g) {
			return nil, &ErrUnsupportedGeometry{Op: "makePolygon", Geometry: g}
		}
		return orb.Polygon{orb.Ring(g.Clone())}, nil
	}
	return nil, &ErrUnsupportedGeometry{Op: "makePolygon", Geometry: g}
}

// AreaOf returns the area enclosed by a feature geometry: a closed line
// becomes its polygon and polygons pass through. ok is false for anything
// without an interior.
func AreaOf(g orb.Geometry) (orb.Geometry, bool) {
	switch g := g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return g, !IsEmpty(g)
	case orb.LineString, orb.Ring:
		if !IsClosed(g) {
			return nil, false
		}
		p, err := MakePolygon(g)
		if err != nil {
			return nil, false
		}
		return p, true
	}
	return nil, false
}

// Dump flattens multi-geometries and collections into their simple parts.
func Dump(g orb.Geometry) []orb.Geometry {
	var out []orb.Geometry
	switch g := g.(type) {
	case nil:
	case orb.MultiPoint:
		for _, p := range g {
			out = append(out, p)
		}
	case orb.MultiLineString:
		for _, ls := range g {
			out = append(out, ls)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			out = append(out, p)
		}
	case orb.Collection:
		for _, c := range g {
			out = append(out, Dump(c)...)
		}
	default:
		if !IsEmpty(g) {
			out = append(out, g)
		}
	}
	return out
}

// Lines returns the line parts of g.
func Lines(g orb.Geometry) []orb.LineString {
	var lines []orb.LineString
	for _, part := range Dump(g) {
		switch p := part.(type) {
		case orb.LineString:
			lines = append(lines, p)
		case orb.Ring:
			lines = append(lines, orb.LineString(p))
		}
	}
	return lines
}

// Polygons returns the polygon parts of g.
func Polygons(g orb.Geometry) []orb.Polygon {
	var polys []orb.Polygon
	for _, part := range Dump(g) {
		if p, ok := part.(orb.Polygon); ok {
			polys = append(polys, p)
		}
	}
	return polys
}

// vertexIndex resolves negative indexes from the end of the line.
func vertexIndex(ls orb.LineString, index int) (int, error) {
	if index < 0 {
		index += len(ls)
	}
	if index < 0 || index >= len(ls) {
		return 0, &ErrVertexIndex{Index: index, NumPoints: len(ls)}
	}
	return index, nil
}

// RemoveVertex returns a copy of ls without the vertex at index.
// Negative indexes count from the end.
func RemoveVertex(ls orb.LineString, index int) (orb.LineString, error) {
	i, err := vertexIndex(ls, index)
	if err != nil {
		return nil, err
	}
	if len(ls) <= 2 {
		return nil, &ErrVertexIndex{Index: index, NumPoints: len(ls)}
	}
	out := make(orb.LineString, 0, len(ls)-1)
	out = append(out, ls[:i]...)
	out = append(out, ls[i+1:]...)
	return out, nil
}

// SetVertex returns a copy of ls with the vertex at index replaced by p.
// Negative indexes count from the end.
func SetVertex(ls orb.LineString, index int, p orb.Point) (orb.LineString, error) {
	i, err := vertexIndex(ls, index)
	if err != nil {
		return nil, err
	}
	out := ls.Clone()
	out[i] = p
	return out, nil
}

// RemoveRepeatedPoints drops consecutive duplicate vertices.
func RemoveRepeatedPoints(ls orb.LineString) orb.LineString {
	if len(ls) == 0 {
		return ls
	}
	out := make(orb.LineString, 0, len(ls))
	out = append(out, ls[0])
	for _, p := range ls[1:] {
		if !p.Equal(out[len(out)-1]) {
			out = append(out, p)
		}
	}
	return out
}

// NearestVertex returns the index and position of the vertex of ls closest
// to p.
func NearestVertex(ls orb.LineString, p orb.Point) (int, orb.Point) {
	best, bestDist := -1, math.Inf(1)
	for i, v := range ls {
		if d := planar.DistanceSquared(v, p); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return -1, orb.Point{}
	}
	return best, ls[best]
}

// Densify returns the vertices of ls with extra points inserted so that no
// two consecutive points are farther apart than step. The closing vertex of
// a ring is not repeated.
func Densify(ls orb.LineString, step float64) orb.MultiPoint {
	var out orb.MultiPoint
	if len(ls) == 0 {
		return out
	}
	for i := 0; i+1 < len(ls); i++ {
		a, b := ls[i], ls[i+1]
		out = append(out, a)
		d := planar.Distance(a, b)
		if step <= 0 || d <= step {
			continue
		}
		n := int(math.Ceil(d / step))
		for k := 1; k < n; k++ {
			t := float64(k) / float64(n)
			out = append(out, orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])})
		}
	}
	if !IsClosed(ls) {
		out = append(out, ls[len(ls)-1])
	}
	return out
}
