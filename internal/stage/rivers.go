package stage

import (
	"context"
	"errors"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/beetlebugorg/maptopo/internal/topology"
	"github.com/paulmach/orb"
)

// RiverStage builds the leveled drainage network.
type RiverStage struct {
	Options RiverOptions
}

// Name implements Stage.
func (s *RiverStage) Name() Name { return Rivers }

func streams() store.Filter {
	return store.Pending(feature.CategoryStream)
}

// Run implements Stage.
func (s *RiverStage) Run(ctx context.Context, env *Env) (Result, error) {
	res := newResult(Rivers)
	lines := env.Data.Lines
	opts := s.Options

	areas := store.All(streams(), store.Closed(), store.Styled("fill: "+opts.AreaFill))
	for _, id := range lines.Select(areas) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n, err := s.thin(env, id)
		if err != nil {
			return res, err
		}
		res.Counters["axes"] += n
	}

	for _, id := range lines.Select(store.All(streams(), store.Open())) {
		if err := lines.Update(id, store.Update{Name: store.Name(topology.CandidateName)}); err != nil {
			return res, err
		}
	}

	shore, err := lines.UnionOf(store.Shore())
	if err != nil {
		return res, err
	}
	var lakes []topology.LakeRing
	for _, id := range lines.Select(store.All(store.LakeBody(), store.Closed())) {
		f, err := lines.Get(id)
		if err != nil {
			return res, err
		}
		if ring := geometry.Lines(f.Geometry); len(ring) == 1 {
			lakes = append(lakes, topology.LakeRing{ID: id, Ring: ring[0]})
		}
	}

	rt := topology.NewRiverTracer(lines, env.Engine, opts.Epsilon, env.Log)
	levels, err := rt.Trace(shore, lakes)
	if err != nil {
		return res, err
	}
	for _, n := range rt.Mouths {
		res.Counters["mouths"] += n
	}
	res.Counters["levels"] = levels
	res.Counters["duplicates"] = rt.Duplicates

	res.Unresolved = count(lines, store.All(streams(), store.Open()))
	return res, nil
}

// thin inserts the medial axis of a stream drawn as an area as candidate
// streams. The area feature itself is kept.
func (s *RiverStage) thin(env *Env, id int64) (int, error) {
	lines := env.Data.Lines
	eps := s.Options.Epsilon
	log := env.Log.WithField("id", id)

	poly, err := polygonOf(lines, id)
	if err != nil {
		return 0, err
	}
	area, err := env.Engine.Buffer(poly, eps/100)
	if err != nil {
		return 0, err
	}
	inner, err := env.Engine.Buffer(area, -eps/50)
	if err != nil {
		return 0, err
	}

	var kept []orb.Geometry
	for _, p := range geometry.Polygons(area) {
		axis, err := env.Engine.MedialAxis(p)
		var empty *geometry.ErrEmptyResult
		if errors.As(err, &empty) {
			log.Warn("area stream has no medial axis")
			continue
		}
		if err != nil {
			return 0, err
		}
		for _, edge := range geometry.Lines(axis) {
			covered, err := env.Engine.Covers(inner, edge)
			if err != nil {
				return 0, err
			}
			if covered {
				kept = append(kept, edge)
			}
		}
	}
	if len(kept) == 0 {
		return 0, nil
	}

	merged, err := env.Engine.Union(kept...)
	if err != nil {
		return 0, err
	}
	pieces, err := env.Engine.LineMerge(merged)
	if err != nil {
		return 0, err
	}
	for _, piece := range pieces {
		lines.Insert(feature.Feature{
			Name:     topology.CandidateName,
			Type:     feature.Pending{Category: feature.CategoryStream, Raw: "STREAMS"},
			Geometry: piece,
		})
	}
	log.WithField("pieces", len(pieces)).Debug("area stream thinned")
	return len(pieces), nil
}
