package stage

import (
	"context"
	"strings"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/beetlebugorg/maptopo/internal/topology"
	"github.com/sirupsen/logrus"
)

// LakeStage classifies lake bodies against the surrounding contours and
// labels the rings that were shadowed by lakes.
type LakeStage struct {
	Options LakeOptions
}

// Name implements Stage.
func (s *LakeStage) Name() Name { return Lakes }

// lakeLines matches raw lake lines, not the candidates left by the coast.
func lakeLines() store.Filter {
	return func(f *feature.Feature) bool {
		return feature.IsPending(f.Type, feature.CategoryLake) && !feature.IsLakeBody(f.Type)
	}
}

// elevationRings matches closed resolved contours, shore included.
func elevationRings() store.Filter {
	return store.All(store.Elevated(), store.Closed())
}

// Run implements Stage.
func (s *LakeStage) Run(ctx context.Context, env *Env) (Result, error) {
	res := newResult(Lakes)
	lines := env.Data.Lines
	opts := s.Options

	pruned, err := topology.Prune(lines, lakeLines(), opts.Prune, env.Log)
	if err != nil {
		return res, err
	}
	res.Counters["pruned"] = pruned

	filled := store.All(lakeLines(), store.Closed(), store.Styled("fill: "+opts.Fill))
	for _, id := range lines.Select(filled) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.classify(env, id, &res); err != nil {
			return res, err
		}
	}

	seeds, err := s.lakeFreeSeeds(env)
	if err != nil {
		return res, err
	}
	lp := topology.NewLabelPropagator(lines, env.Engine, opts.Step, env.Log)
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

	res.Unresolved = count(lines, contours())
	return res, nil
}

// classify checks that a lake sits between two contours one step apart.
func (s *LakeStage) classify(env *Env, id int64, res *Result) error {
	lines := env.Data.Lines
	lake, err := lines.Get(id)
	if err != nil {
		return err
	}
	log := env.Log.WithField("id", id)

	rings, err := nearestAll(env, lines, lake.Geometry, elevationRings())
	if err != nil {
		return err
	}

	var first, second *feature.Feature
	for _, hit := range rings {
		f, err := lines.Get(hit.ID)
		if err != nil {
			return err
		}
		if first == nil {
			first = &f
			continue
		}
		if f.Type.String() == first.Type.String() {
			continue
		}
		poly, err := polygonOf(lines, first.ID)
		if err != nil {
			return err
		}
		inside, err := env.Engine.Covers(poly, f.Geometry)
		if err != nil {
			return err
		}
		if !inside {
			second = &f
			break
		}
	}

	if first == nil || second == nil {
		log.Warn("lake has no bracketing contours")
		res.Counters["broken"]++
		return lines.Update(id, store.Update{Type: feature.Lake{Broken: true}})
	}

	e1, _ := feature.ElevationOf(first.Type)
	e2, _ := feature.ElevationOf(second.Type)
	if abs(e1-e2) != s.Options.Step {
		log.WithFields(logrus.Fields{
			"first":  first.ID,
			"second": second.ID,
			"range":  strings.Join([]string{first.Type.String(), second.Type.String()}, "/"),
		}).Warn("lake sanity check failed")
		res.Counters["broken"]++
		return lines.Update(id, store.Update{Type: feature.Lake{Broken: true}})
	}
	res.Counters["lakes"]++
	return lines.Update(id, store.Update{Type: feature.Lake{}})
}

// lakeFreeSeeds returns closed contour rings that hold no lake and no other
// contour ring. Unresolved lake outlines and candidates count as lakes.
func (s *LakeStage) lakeFreeSeeds(env *Env) ([]int64, error) {
	lines := env.Data.Lines
	anyLake := func(f *feature.Feature) bool {
		if _, ok := f.Type.(feature.Lake); ok {
			return true
		}
		return feature.IsPending(f.Type, feature.CategoryLake)
	}

	set := make(map[int64]bool)
	for _, id := range lines.Select(topology.ContourRing()) {
		poly, err := polygonOf(lines, id)
		if err != nil {
			return nil, err
		}
		holdsLake, err := coversAny(env, lines, poly, anyLake, id)
		if err != nil {
			return nil, err
		}
		if !holdsLake {
			set[id] = true
		}
	}
	return innermost(env, set, topology.ContourRing())
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
