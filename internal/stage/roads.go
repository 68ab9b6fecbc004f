package stage

import (
	"context"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

// RoadStage ties roads to settlements and to each other.
type RoadStage struct {
	Options RoadOptions
}

// Name implements Stage.
func (s *RoadStage) Name() Name { return Roads }

func roads() store.Filter {
	return store.Pending(feature.CategoryRoad)
}

// Run implements Stage.
func (s *RoadStage) Run(ctx context.Context, env *Env) (Result, error) {
	res := newResult(Roads)
	lines, points := env.Data.Lines, env.Data.Points
	eps := s.Options.Epsilon

	h, err := pruneAndHeal(ctx, env, roads(), eps, &res)
	if err != nil {
		return res, err
	}
	res.Counters["dropped"] = h.Dropped

	for _, id := range points.Select(store.Pending(feature.CategorySettlement)) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		f, err := points.Get(id)
		if err != nil {
			return res, err
		}
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		n, err := s.snapToSettlement(env, id, p)
		if err != nil {
			return res, err
		}
		res.Counters["settled"] += n
	}

	for _, id := range lines.Select(roads()) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		for _, side := range []feature.Side{feature.Start, feature.End} {
			tied, err := s.tieEnd(env, id, side)
			if err != nil {
				return res, err
			}
			if tied {
				res.Counters["tied"]++
			}
		}
	}

	loose, err := s.loose(env)
	if err != nil {
		return res, err
	}
	res.Unresolved = loose
	return res, nil
}

func roadLine(s store.Store, id int64) (orb.LineString, error) {
	f, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	lines := geometry.Lines(f.Geometry)
	if len(lines) != 1 || len(lines[0]) == 0 {
		return nil, nil
	}
	return lines[0], nil
}

func roadEnd(ls orb.LineString, side feature.Side) orb.Point {
	if side == feature.End {
		return geometry.EndPoint(ls)
	}
	return geometry.StartPoint(ls)
}

// snapToSettlement moves the nearest vertex of every road passing close to
// a settlement onto it.
func (s *RoadStage) snapToSettlement(env *Env, settlement int64, p orb.Point) (int, error) {
	lines := env.Data.Lines
	hits, err := lines.NearestWithin(p, s.Options.Epsilon, roads())
	if err != nil {
		return 0, err
	}
	snapped := 0
	for _, hit := range hits {
		if hit.Distance == 0 {
			continue
		}
		ls, err := roadLine(lines, hit.ID)
		if err != nil {
			return 0, err
		}
		if ls == nil {
			continue
		}
		idx, _ := geometry.NearestVertex(ls, p)
		moved, err := geometry.SetVertex(ls, idx, p)
		if err != nil {
			return 0, err
		}
		if err := lines.Update(hit.ID, store.Update{Geometry: moved}); err != nil {
			return 0, err
		}
		env.Log.WithFields(logrus.Fields{"id": hit.ID, "settlement": settlement}).Debug("road snapped to settlement")
		snapped++
	}
	return snapped, nil
}

// tieEnd moves a road endpoint onto the nearest vertex of the closest other
// road, unless the endpoint already touches it.
func (s *RoadStage) tieEnd(env *Env, id int64, side feature.Side) (bool, error) {
	lines := env.Data.Lines
	own, err := roadLine(lines, id)
	if err != nil || own == nil {
		return false, err
	}
	end := roadEnd(own, side)

	hits, err := lines.NearestWithin(end, s.Options.Epsilon, store.All(roads(), store.Except(id)))
	if err != nil {
		return false, err
	}
	if len(hits) == 0 || hits[0].Distance == 0 {
		return false, nil
	}
	other, err := roadLine(lines, hits[0].ID)
	if err != nil || other == nil {
		return false, err
	}
	_, v := geometry.NearestVertex(other, end)
	moved, err := geometry.SetVertex(own, side.Index(), v)
	if err != nil {
		return false, err
	}
	if err := lines.Update(id, store.Update{Geometry: moved}); err != nil {
		return false, err
	}
	env.Log.WithFields(logrus.Fields{"id": id, "to": hits[0].ID, "side": side.String()}).Debug("road end tied")
	return true, nil
}

// loose counts roads neither of whose endpoints touches another road.
func (s *RoadStage) loose(env *Env) (int, error) {
	lines := env.Data.Lines
	n := 0
	for _, id := range lines.Select(roads()) {
		ls, err := roadLine(lines, id)
		if err != nil {
			return 0, err
		}
		if ls == nil {
			n++
			continue
		}
		touching := false
		for _, side := range []feature.Side{feature.Start, feature.End} {
			hits, err := lines.NearestWithin(roadEnd(ls, side), touchRadius, store.All(roads(), store.Except(id)))
			if err != nil {
				return 0, err
			}
			if len(hits) > 0 {
				touching = true
			}
		}
		if !touching {
			n++
		}
	}
	return n, nil
}
