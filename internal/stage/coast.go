package stage

import (
	"context"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/beetlebugorg/maptopo/internal/topology"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

// MainlandName names the shore ring built from the open coastline
// remainder.
const MainlandName = "main"

// CoastStage closes coastlines into shore rings and extracts lakes drawn
// as coastline.
type CoastStage struct {
	Options CoastOptions
}

// Name implements Stage.
func (s *CoastStage) Name() Name { return Coast }

func coastlines() store.Filter {
	return store.Pending(feature.CategoryCoastline)
}

// Run implements Stage.
func (s *CoastStage) Run(ctx context.Context, env *Env) (Result, error) {
	res := newResult(Coast)
	lines := env.Data.Lines
	opts := s.Options

	h, err := pruneAndHeal(ctx, env, coastlines(), opts.Connect, &res)
	if err != nil {
		return res, err
	}

	c := topology.NewConnector(lines, h, opts.Connect, store.Any(coastlines(), store.Shore()), env.Log)
	if err := c.ConnectAll(lines.Select(store.All(coastlines(), store.Open()))); err != nil {
		return res, err
	}
	res.Counters["merged"] = c.Merged
	res.Counters["closed"] = c.Closed

	for _, p := range opts.Islands {
		if err := s.island(env, h, p, &res); err != nil {
			return res, err
		}
	}

	if err := s.dryLakes(ctx, env, h, &res); err != nil {
		return res, err
	}
	for _, lake := range opts.Lakes {
		if err := s.namedLake(env, lake, &res); err != nil {
			return res, err
		}
	}

	for _, id := range lines.Select(store.All(store.Any(coastlines(), store.LakeCandidate()), store.Closed())) {
		if err := lines.Update(id, store.Update{Type: feature.Elevation{}}); err != nil {
			return res, err
		}
		res.Counters["shore"]++
	}

	if opts.Mainland {
		if err := s.mainland(env, &res); err != nil {
			return res, err
		}
	}

	res.Counters["dropped"] = h.Dropped
	res.Unresolved = count(lines, store.All(coastlines(), store.Open()))
	return res, nil
}

// island grows the coast ring around p over river inlets.
func (s *CoastStage) island(env *Env, h *topology.Healer, p orb.Point, res *Result) error {
	lines := env.Data.Lines
	noise := s.Options.Noise

	ids, err := lines.Covering(p, store.All(coastlines(), store.Closed()))
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		env.Log.WithField("point", p).Warn("no coastline ring around island point")
		return nil
	}
	id := ids[0]
	poly, err := polygonOf(lines, id)
	if err != nil {
		return err
	}

	grown, err := env.Engine.Buffer(poly, noise)
	if err != nil {
		return err
	}
	shrunk, err := env.Engine.Buffer(grown, -2*noise)
	if err != nil {
		return err
	}
	merged, err := env.Engine.Union(shrunk, poly)
	if err != nil {
		return err
	}
	boundary, err := env.Engine.Boundary(merged)
	if err != nil {
		return err
	}
	if err := h.HealLine(id, geometry.Dump(boundary)...); err != nil {
		return err
	}
	env.Log.WithField("id", id).Debug("island healed")
	res.Counters["islands"]++
	return nil
}

// dryLakes re-heals every closed coastline ring without the river mouths
// cut into it. Rings that fall apart become several lake candidates.
func (s *CoastStage) dryLakes(ctx context.Context, env *Env, h *topology.Healer, res *Result) error {
	lines := env.Data.Lines
	noise := s.Options.Noise
	placeholder := feature.Feature{Name: "nameless", Type: feature.MustParseType(feature.TmpLake)}

	for _, id := range lines.Select(store.All(coastlines(), store.Closed())) {
		if err := ctx.Err(); err != nil {
			return err
		}
		poly, err := polygonOf(lines, id)
		if err != nil {
			return err
		}
		dried, err := env.Engine.Buffer(poly, -noise)
		if err != nil {
			return err
		}
		if geometry.IsEmpty(dried) {
			env.Log.WithField("id", id).Debug("ring vanishes when dried")
			continue
		}
		regrown, err := env.Engine.Buffer(dried, 2*noise)
		if err != nil {
			return err
		}
		clipped, err := env.Engine.Intersection(regrown, poly)
		if err != nil {
			return err
		}
		boundary, err := env.Engine.Boundary(clipped)
		if err != nil {
			return err
		}
		bag := geometry.Dump(boundary)
		if len(bag) == 0 {
			continue
		}
		ids, err := h.HealRings(id, bag, noise, placeholder)
		if err != nil {
			return err
		}
		res.Counters["lake_candidates"] += len(ids)
	}
	return nil
}

// namedLake turns the innermost closed ring around the lake's point into a
// named lake.
func (s *CoastStage) namedLake(env *Env, lake NamedLake, res *Result) error {
	lines := env.Data.Lines
	ids, err := lines.Covering(lake.Point, store.All(store.Any(coastlines(), store.LakeCandidate()), store.Closed()))
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		env.Log.WithField("lake", lake.Name).Warn("no ring around lake point")
		return nil
	}

	inner, innerArea := ids[0], 0.0
	for i, id := range ids {
		poly, err := polygonOf(lines, id)
		if err != nil {
			return err
		}
		if a := geometry.Area(poly); i == 0 || a < innerArea {
			inner, innerArea = id, a
		}
	}

	err = lines.Update(inner, store.Update{
		Type: feature.Lake{Name: lake.Name, Surface: lake.Surface},
		Name: store.Name("LAKE/" + lake.Name),
	})
	if err != nil {
		return err
	}
	env.Log.WithFields(logrus.Fields{"id": inner, "lake": lake.Name}).Debug("named lake")
	res.Counters["named_lakes"]++
	return nil
}

// mainland builds the main shore ring from the open coastline remainder and
// drops the shore rings it swallows.
func (s *CoastStage) mainland(env *Env, res *Result) error {
	lines := env.Data.Lines
	noise := s.Options.Noise

	remainder, err := lines.UnionOf(store.All(coastlines(), store.Open()))
	if err != nil {
		return err
	}
	if geometry.IsEmpty(remainder) {
		return nil
	}
	grown, err := env.Engine.Buffer(remainder, noise)
	if err != nil {
		return err
	}
	largest, ok := largestPolygon(grown)
	if !ok {
		return nil
	}
	shrunk, err := env.Engine.Buffer(orb.Polygon{largest[0]}, -noise)
	if err != nil {
		return err
	}
	main, ok := largestPolygon(shrunk)
	if !ok {
		env.Log.Warn("mainland vanishes when shrunk")
		return nil
	}

	id := lines.Insert(feature.Feature{
		Name:     MainlandName,
		Type:     feature.Elevation{},
		Geometry: orb.LineString(main[0]),
	})
	res.Counters["mainland"]++

	area := orb.Polygon{main[0]}
	for _, shore := range lines.Select(store.All(store.Shore(), store.Except(id))) {
		f, err := lines.Get(shore)
		if err != nil {
			return err
		}
		if f.Name == MainlandName {
			continue
		}
		covered, err := env.Engine.Covers(area, f.Geometry)
		if err != nil {
			return err
		}
		if covered {
			if err := lines.Delete(shore); err != nil {
				return err
			}
			res.Counters["swallowed"]++
		}
	}
	return nil
}
