package topology

import (
	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

// CandidateName marks streams still waiting for a drainage level.
const CandidateName = "candidate"

// LakeRing is a lake boundary streams may drain into.
type LakeRing struct {
	ID   int64
	Ring orb.LineString
}

// RiverTracer levels a stream network. Level 0 mouths touch the shoreline;
// level n mouths touch a level n-1 mouth or a lake reached at level n-1.
type RiverTracer struct {
	lines  store.Store
	engine geometry.Engine
	log    logrus.FieldLogger

	// Epsilon is the largest gap between a stream endpoint and the boundary
	// it drains into.
	Epsilon float64

	// Candidates selects the streams to level.
	Candidates store.Filter

	// Mouths counts emitted mouths per level and side.
	Mouths map[feature.Mouth]int

	// Duplicates counts candidates deleted because they retracted to
	// nothing.
	Duplicates int
}

// NewRiverTracer returns a tracer over the candidate streams of lines.
func NewRiverTracer(lines store.Store, engine geometry.Engine, epsilon float64, log logrus.FieldLogger) *RiverTracer {
	return &RiverTracer{
		lines:      lines,
		engine:     engine,
		log:        log,
		Epsilon:    epsilon,
		Candidates: store.All(store.Named(CandidateName), store.Pending(feature.CategoryStream)),
		Mouths:     make(map[feature.Mouth]int),
	}
}

// Trace levels every candidate reachable from shore, recursing through
// lakes. It returns the number of levels that were processed.
func (rt *RiverTracer) Trace(shore orb.Geometry, lakes []LakeRing) (int, error) {
	terminal := shore
	level := 0
	for {
		shifted, err := rt.level(level, terminal, lakes)
		if err != nil {
			return 0, err
		}
		if shifted == 0 {
			return level + 1, nil
		}
		level++
		if terminal, err = rt.lines.UnionOf(store.MouthLevel(level - 1)); err != nil {
			return 0, err
		}
	}
}

// level runs both sides against terminal, then lets the mouths of the level
// drain through lakes. It returns the number of streams shifted.
func (rt *RiverTracer) level(level int, terminal orb.Geometry, lakes []LakeRing) (int, error) {
	total := 0
	for _, side := range []feature.Side{feature.Start, feature.End} {
		n, err := rt.shift(side, level, terminal)
		if err != nil {
			return 0, err
		}
		total += n
	}
	for _, side := range []feature.Side{feature.Start, feature.End} {
		n, err := rt.lakes(side, level, lakes)
		if err != nil {
			return 0, err
		}
		total += n
	}
	rt.log.WithFields(logrus.Fields{"level": level, "shifted": total}).Debug("level done")
	return total, nil
}

func endpoint(ls orb.LineString, side feature.Side) orb.Point {
	if side == feature.End {
		return geometry.EndPoint(ls)
	}
	return geometry.StartPoint(ls)
}

// shift turns every candidate whose side endpoint lies near terminal into a
// mouth of the given level.
func (rt *RiverTracer) shift(side feature.Side, level int, terminal orb.Geometry) (int, error) {
	if geometry.IsEmpty(terminal) {
		return 0, nil
	}
	hits, err := rt.lines.NearestWithin(terminal, rt.Epsilon, rt.Candidates)
	if err != nil {
		return 0, err
	}

	var selected []int64
	for _, id := range sortedIDs(hits) {
		ls, err := rt.stream(id)
		if err != nil {
			return 0, err
		}
		d, err := rt.engine.Distance(terminal, endpoint(ls, side))
		if err != nil {
			return 0, err
		}
		if d < rt.Epsilon {
			selected = append(selected, id)
		}
	}

	for _, id := range selected {
		if err := rt.mouth(id, side, level, terminal); err != nil {
			return 0, err
		}
	}
	if len(selected) > 0 {
		rt.log.WithFields(logrus.Fields{
			"level":   level,
			"side":    side.String(),
			"streams": len(selected),
		}).Debug("shifted streams")
	}
	return len(selected), nil
}

func (rt *RiverTracer) stream(id int64) (orb.LineString, error) {
	f, err := rt.lines.Get(id)
	if err != nil {
		return nil, err
	}
	lines := geometry.Lines(f.Geometry)
	if len(lines) != 1 || len(lines[0]) == 0 {
		return nil, &ErrNotALine{ID: id, Kind: geometryKind(f.Geometry)}
	}
	return lines[0], nil
}

// mouth retracts the side endpoint of a stream until it no longer crosses
// terminal, snaps it onto terminal and replaces the stream with a mouth.
// Streams that retract below three vertices are duplicates and are deleted.
func (rt *RiverTracer) mouth(id int64, side feature.Side, level int, terminal orb.Geometry) error {
	f, err := rt.lines.Get(id)
	if err != nil {
		return err
	}
	ls, err := rt.stream(id)
	if err != nil {
		return err
	}

	for {
		crosses, err := rt.engine.Intersects(terminal, ls)
		if err != nil {
			return err
		}
		if !crosses {
			break
		}
		if len(ls) < 3 {
			rt.Duplicates++
			rt.log.WithField("id", id).Warn("duplicate stream")
			return rt.lines.Delete(id)
		}
		if ls, err = geometry.RemoveVertex(ls, side.Index()); err != nil {
			return err
		}
	}

	snap, err := rt.engine.NearestPoint(terminal, endpoint(ls, side))
	if err != nil {
		return err
	}
	ls, err = geometry.SetVertex(geometry.RemoveRepeatedPoints(ls), side.Index(), snap)
	if err != nil {
		return err
	}

	kind := feature.Mouth{Level: level, Side: side}
	rt.lines.Insert(feature.Feature{
		Name:     feature.DefaultName,
		Type:     kind,
		Style:    f.Style,
		Geometry: ls,
	})
	rt.Mouths[kind]++
	return rt.lines.Delete(id)
}

// lakes clips the mouths of a level that drain out of a lake on side and,
// for every lake reached, levels the streams around that lake one level up.
func (rt *RiverTracer) lakes(side feature.Side, level int, lakes []LakeRing) (int, error) {
	total := 0
	for _, lake := range lakes {
		area, err := geometry.MakePolygon(lake.Ring)
		if err != nil {
			rt.log.WithField("lake", lake.ID).Warn("lake ring is not closed")
			continue
		}
		hits, err := rt.lines.NearestWithin(area, rt.Epsilon, store.MouthAt(level, side.Other()))
		if err != nil {
			return 0, err
		}

		reached := 0
		for _, id := range sortedIDs(hits) {
			ls, err := rt.stream(id)
			if err != nil {
				return 0, err
			}
			d, err := rt.engine.Distance(area, endpoint(ls, side))
			if err != nil {
				return 0, err
			}
			if d >= rt.Epsilon {
				continue
			}
			reached++
			if err := rt.clip(id, ls, area); err != nil {
				return 0, err
			}
		}
		if reached == 0 {
			continue
		}

		rt.log.WithFields(logrus.Fields{
			"lake":   lake.ID,
			"level":  level,
			"mouths": reached,
		}).Debug("lake reached")
		for _, s := range []feature.Side{side, side.Other()} {
			n, err := rt.shift(s, level+1, lake.Ring)
			if err != nil {
				return 0, err
			}
			total += n
		}
	}
	return total, nil
}

// clip removes the part of a mouth inside a lake, keeping the longest
// remaining piece.
func (rt *RiverTracer) clip(id int64, ls orb.LineString, area orb.Polygon) error {
	valid, err := rt.engine.MakeValid(ls)
	if err != nil {
		return err
	}
	rest, err := rt.engine.Difference(valid, area)
	if err != nil {
		return err
	}
	pieces := geometry.Lines(rest)
	if len(pieces) == 0 {
		return nil
	}
	longest := pieces[0]
	for _, p := range pieces[1:] {
		if geometry.Length(p) > geometry.Length(longest) {
			longest = p
		}
	}
	if orb.Equal(longest, ls) {
		return nil
	}
	return rt.lines.Update(id, store.Update{Geometry: longest})
}
