package stage

import (
	"context"
	"sort"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/beetlebugorg/maptopo/internal/topology"
	"github.com/paulmach/orb"
)

// touchRadius is the distance under which two geometries are treated as
// touching.
const touchRadius = 1e-9

// pruneAndHeal removes artifact lines of a class and heals every survivor
// on its own.
func pruneAndHeal(ctx context.Context, env *Env, filter store.Filter, minLength float64, res *Result) (*topology.Healer, error) {
	lines := env.Data.Lines
	pruned, err := topology.Prune(lines, filter, minLength, env.Log)
	if err != nil {
		return nil, err
	}
	res.Counters["pruned"] += pruned

	h := topology.NewHealer(lines, env.Engine, env.Log)
	for _, id := range lines.Select(filter) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := h.HealLine(id); err != nil {
			return nil, err
		}
		res.Counters["healed"]++
	}
	return h, nil
}

func count(s store.Store, filter store.Filter) int {
	return len(s.Select(filter))
}

// nearestAll returns every matching feature ordered by distance to g, with
// ties in id order.
func nearestAll(env *Env, s store.Store, g orb.Geometry, filter store.Filter) ([]store.Neighbor, error) {
	var out []store.Neighbor
	for _, id := range s.Select(filter) {
		f, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		d, err := env.Engine.Distance(g, f.Geometry)
		if err != nil {
			return nil, err
		}
		out = append(out, store.Neighbor{ID: id, Distance: d})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

// coversAny reports whether area covers any matching feature other than
// except.
func coversAny(env *Env, s store.Store, area orb.Geometry, filter store.Filter, except int64) (bool, error) {
	hits, err := s.NearestWithin(area, touchRadius, store.All(filter, store.Except(except)))
	if err != nil {
		return false, err
	}
	for _, hit := range hits {
		f, err := s.Get(hit.ID)
		if err != nil {
			return false, err
		}
		covers, err := env.Engine.Covers(area, f.Geometry)
		if err != nil {
			return false, err
		}
		if covers {
			return true, nil
		}
	}
	return false, nil
}

// polygonOf returns the area enclosed by a closed feature.
func polygonOf(s store.Store, id int64) (orb.Polygon, error) {
	f, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return geometry.MakePolygon(f.Geometry)
}

// largestPolygon returns the polygon part of g with the largest area.
func largestPolygon(g orb.Geometry) (orb.Polygon, bool) {
	var best orb.Polygon
	bestArea := -1.0
	for _, p := range geometry.Polygons(g) {
		if a := geometry.Area(p); a > bestArea {
			best, bestArea = p, a
		}
	}
	return best, best != nil
}

// contours matches pending contours.
func contours() store.Filter {
	return store.Pending(feature.CategoryContour)
}

// elevated matches rings and lines with a resolved elevation above the
// shoreline.
func elevated() store.Filter {
	return func(f *feature.Feature) bool {
		e, ok := f.Type.(feature.Elevation)
		return ok && e.Meters != 0
	}
}

// elevation matches features resolved to exactly meters.
func elevation(meters int) store.Filter {
	return func(f *feature.Feature) bool {
		e, ok := f.Type.(feature.Elevation)
		return ok && e.Meters == meters
	}
}
