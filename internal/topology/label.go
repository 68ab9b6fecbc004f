package topology

import (
	"sort"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

// ChainRing is one ring of a containment chain. Rank is the index in the
// chain; Fixed rings carry Elevation.
type ChainRing struct {
	ID        int64
	Fixed     bool
	Elevation int
}

// Assignment labels an unlabeled ring.
type Assignment struct {
	ID        int64
	Elevation int
}

// Conflict is a fixed label that disagrees with the value computed from
// another fixed ring of the same chain.
type Conflict struct {
	Ring     int64
	From     int64
	Existing int
	Computed int
}

// ResolveChain computes elevations along a chain ordered innermost first.
// The ring at rank r gets e_f + step*(r_f - r) from the first fixed ring
// (rank r_f, elevation e_f). Fixed rings are never changed; every fixed ring
// is checked against every other and disagreements are reported.
func ResolveChain(chain []ChainRing, step int) ([]Assignment, []Conflict) {
	var (
		assignments []Assignment
		conflicts   []Conflict
		assigned    = make(map[int]bool)
	)
	for rf, fixed := range chain {
		if !fixed.Fixed {
			continue
		}
		for r, ring := range chain {
			computed := fixed.Elevation + step*(rf-r)
			switch {
			case ring.Fixed:
				if ring.Elevation != computed {
					conflicts = append(conflicts, Conflict{
						Ring:     ring.ID,
						From:     fixed.ID,
						Existing: ring.Elevation,
						Computed: computed,
					})
				}
			case !assigned[r]:
				assigned[r] = true
				assignments = append(assignments, Assignment{ID: ring.ID, Elevation: computed})
			}
		}
	}
	return assignments, conflicts
}

// LabelPropagator resolves contour elevations from labels and nesting.
type LabelPropagator struct {
	lines  store.Store
	engine geometry.Engine
	log    logrus.FieldLogger

	// Step is the contour interval.
	Step int

	// Chain selects the rings taking part in containment chains.
	Chain store.Filter

	Labeled   int
	Conflicts int
}

// NewLabelPropagator returns a propagator over the contour rings in lines.
func NewLabelPropagator(lines store.Store, engine geometry.Engine, step int, log logrus.FieldLogger) *LabelPropagator {
	return &LabelPropagator{
		lines:  lines,
		engine: engine,
		log:    log,
		Step:   step,
		Chain:  ContourRing(),
	}
}

// ContourRing matches closed pending contours and closed elevation rings
// above the shoreline.
func ContourRing() store.Filter {
	return store.All(store.Closed(), func(f *feature.Feature) bool {
		if feature.IsPending(f.Type, feature.CategoryContour) {
			return true
		}
		e, ok := f.Type.(feature.Elevation)
		return ok && e.Meters != 0
	})
}

// ClusterElevationPoints groups elevation markers by their label.
func ClusterElevationPoints(points store.Store) map[int]orb.MultiPoint {
	clusters := make(map[int]orb.MultiPoint)
	for _, id := range points.Select(nil) {
		f, err := points.Get(id)
		if err != nil {
			continue
		}
		pending, ok := f.Type.(feature.Pending)
		if !ok || pending.Category != feature.CategoryElevationLabel {
			continue
		}
		elevation, ok := feature.ElevationOf(f.Type)
		if !ok {
			continue
		}
		for _, g := range geometry.Dump(f.Geometry) {
			if p, ok := g.(orb.Point); ok {
				clusters[elevation] = append(clusters[elevation], p)
			}
		}
	}
	return clusters
}

// MatchLabels labels every pending contour closer than radius to exactly
// one elevation cluster. Contours near clusters of different values stay
// pending.
func (lp *LabelPropagator) MatchLabels(clusters map[int]orb.MultiPoint, radius float64) error {
	elevations := make([]int, 0, len(clusters))
	for e := range clusters {
		elevations = append(elevations, e)
	}
	sort.Ints(elevations)

	matches := make(map[int64][]int)
	for _, e := range elevations {
		hits, err := lp.lines.NearestWithin(clusters[e], radius, store.Pending(feature.CategoryContour))
		if err != nil {
			return err
		}
		for _, hit := range hits {
			matches[hit.ID] = append(matches[hit.ID], e)
		}
	}

	ids := make([]int64, 0, len(matches))
	for id := range matches {
		ids = append(ids, id)
	}
	sortInt64s(ids)

	for _, id := range ids {
		values := matches[id]
		if len(values) > 1 {
			lp.log.WithFields(logrus.Fields{"id": id, "labels": values}).Warn("ambiguous elevation labels")
			continue
		}
		if err := lp.lines.Update(id, store.Update{Type: feature.Elevation{Meters: values[0]}}); err != nil {
			return err
		}
		lp.Labeled++
	}
	return nil
}

// chain returns the rings covering seed, nearest first.
func (lp *LabelPropagator) chain(seed orb.Geometry) ([]ChainRing, error) {
	ids, err := lp.lines.Covering(seed, lp.Chain)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		ring     ChainRing
		distance float64
	}
	rings := make([]ranked, 0, len(ids))
	for _, id := range ids {
		f, err := lp.lines.Get(id)
		if err != nil {
			return nil, err
		}
		d, err := lp.engine.Distance(f.Geometry, seed)
		if err != nil {
			return nil, err
		}
		ring := ChainRing{ID: id}
		if e, ok := f.Type.(feature.Elevation); ok {
			ring.Fixed, ring.Elevation = true, e.Meters
		}
		rings = append(rings, ranked{ring: ring, distance: d})
	}
	sort.SliceStable(rings, func(i, j int) bool { return rings[i].distance < rings[j].distance })

	chain := make([]ChainRing, len(rings))
	for i, r := range rings {
		chain[i] = r.ring
	}
	return chain, nil
}

// PropagateFrom labels the containment chain of the seed ring.
func (lp *LabelPropagator) PropagateFrom(seed int64) error {
	f, err := lp.lines.Get(seed)
	if err != nil {
		return err
	}
	chain, err := lp.chain(f.Geometry)
	if err != nil {
		return err
	}
	log := lp.log.WithField("seed", seed)

	assignments, conflicts := ResolveChain(chain, lp.Step)
	if len(assignments) == 0 && len(conflicts) == 0 {
		log.WithField("rings", len(chain)).Debug("no fixed ring in chain")
		return nil
	}
	for _, a := range assignments {
		if err := lp.lines.Update(a.ID, store.Update{Type: feature.Elevation{Meters: a.Elevation}}); err != nil {
			return err
		}
		lp.Labeled++
	}
	for _, c := range conflicts {
		lp.Conflicts++
		log.WithFields(logrus.Fields{
			"ring":     c.Ring,
			"from":     c.From,
			"existing": c.Existing,
			"computed": c.Computed,
		}).Warn("elevation conflict")
	}
	return nil
}
