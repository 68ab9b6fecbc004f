package stage

import (
	"context"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/beetlebugorg/maptopo/internal/topology"
)

// ElevationStage labels contour lines from elevation markers and nesting.
type ElevationStage struct {
	Options ElevationOptions
}

// Name implements Stage.
func (s *ElevationStage) Name() Name { return Elevation }

// Run implements Stage.
func (s *ElevationStage) Run(ctx context.Context, env *Env) (Result, error) {
	res := newResult(Elevation)
	lines := env.Data.Lines
	opts := s.Options

	h, err := pruneAndHeal(ctx, env, contours(), opts.Connect, &res)
	if err != nil {
		return res, err
	}

	lp := topology.NewLabelPropagator(lines, env.Engine, opts.Step, env.Log)
	clusters := topology.ClusterElevationPoints(env.Data.Points)
	if err := lp.MatchLabels(clusters, opts.LabelMatch); err != nil {
		return res, err
	}
	res.Counters["matched"] = lp.Labeled

	c := topology.NewConnector(lines, h, opts.Connect, nil, env.Log)
	for _, id := range lines.Select(store.All(elevated(), store.Open())) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if c.Consumed(id) {
			continue
		}
		f, err := lines.Get(id)
		if err != nil {
			return res, err
		}
		e := f.Type.(feature.Elevation)
		c.Eligible = store.Any(contours(), elevation(e.Meters))
		if err := c.Connect(id); err != nil {
			return res, err
		}
	}
	res.Counters["merged"] = c.Merged
	res.Counters["closed"] = c.Closed

	seeds, err := s.peakSeeds(env)
	if err != nil {
		return res, err
	}
	lp.Labeled = 0
	for _, id := range seeds {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := lp.PropagateFrom(id); err != nil {
			return res, err
		}
	}
	res.Counters["seeds"] = len(seeds)
	res.Counters["propagated"] = lp.Labeled
	res.Counters["conflicts"] = lp.Conflicts
	res.Counters["dropped"] = h.Dropped

	res.Unresolved = count(lines, contours())
	return res, nil
}

// peakSeeds returns the innermost contour rings around peaks: closed rings
// holding a peak marker and covering no other contour ring.
func (s *ElevationStage) peakSeeds(env *Env) ([]int64, error) {
	lines, points := env.Data.Lines, env.Data.Points

	around := make(map[int64]bool)
	for _, peak := range points.Select(store.Pending(feature.CategoryPeak)) {
		f, err := points.Get(peak)
		if err != nil {
			return nil, err
		}
		ids, err := lines.Covering(f.Geometry, topology.ContourRing())
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			around[id] = true
		}
	}
	return innermost(env, around, topology.ContourRing())
}

// innermost keeps the rings of set that cover no other ring matching
// filter, in id order.
func innermost(env *Env, set map[int64]bool, filter store.Filter) ([]int64, error) {
	lines := env.Data.Lines
	var seeds []int64
	for _, id := range lines.Select(func(f *feature.Feature) bool { return set[f.ID] }) {
		poly, err := polygonOf(lines, id)
		if err != nil {
			return nil, err
		}
		covers, err := coversAny(env, lines, poly, filter, id)
		if err != nil {
			return nil, err
		}
		if !covers {
			seeds = append(seeds, id)
		}
	}
	return seeds, nil
}
