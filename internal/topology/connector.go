package topology

import (
	"math"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/sirupsen/logrus"
)

// Connector closes open lines by bridging their loose endpoints to the
// nearest eligible neighbour, consuming the neighbour into the line.
type Connector struct {
	store  store.Store
	healer *Healer
	log    logrus.FieldLogger

	// Threshold is the largest endpoint gap treated as touching.
	Threshold float64

	// Eligible selects the features a line may connect to.
	Eligible store.Filter

	consumed map[int64]struct{}

	// Merged counts neighbours consumed, Closed counts lines closed onto
	// themselves.
	Merged int
	Closed int
}

// NewConnector returns a connector healing through h.
func NewConnector(s store.Store, h *Healer, threshold float64, eligible store.Filter, log logrus.FieldLogger) *Connector {
	return &Connector{
		store:     s,
		healer:    h,
		log:       log,
		Threshold: threshold,
		Eligible:  eligible,
		consumed:  make(map[int64]struct{}),
	}
}

// Consumed reports whether id was merged into another line.
func (c *Connector) Consumed(id int64) bool {
	_, ok := c.consumed[id]
	return ok
}

// bridge is the shortest endpoint connection found for a line.
type bridge struct {
	neighbor int64
	from, to orb.Point
	distance float64
}

// ConnectAll connects every id of a worklist in order, skipping ids
// consumed earlier in the batch.
func (c *Connector) ConnectAll(ids []int64) error {
	for _, id := range ids {
		if c.Consumed(id) {
			continue
		}
		if err := c.Connect(id); err != nil {
			return err
		}
	}
	return nil
}

// Connect joins line id to its nearest neighbours until no endpoint pair is
// closer than the threshold, or the line closes onto itself.
func (c *Connector) Connect(id int64) error {
	log := c.log.WithField("id", id)
	for {
		own, err := c.line(id)
		if err != nil {
			return err
		}
		b, found, err := c.nearest(id, own)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}

		bag := []orb.Geometry{own}
		if b.neighbor != id {
			neighbor, err := c.store.Get(b.neighbor)
			if err != nil {
				return err
			}
			bag = append(bag, neighbor.Geometry)
		}
		if b.distance > 0 {
			bag = append(bag, orb.LineString{b.from, b.to})
		}
		if err := c.healer.HealLine(id, bag...); err != nil {
			return err
		}

		if b.neighbor == id {
			c.Closed++
			log.Debug("closed onto itself")
			return nil
		}
		if err := c.store.Delete(b.neighbor); err != nil {
			return err
		}
		c.consumed[b.neighbor] = struct{}{}
		c.Merged++
		log.WithFields(logrus.Fields{
			"neighbor": b.neighbor,
			"gap":      b.distance,
		}).Debug("merged neighbor")
	}
}

func (c *Connector) line(id int64) (orb.LineString, error) {
	f, err := c.store.Get(id)
	if err != nil {
		return nil, err
	}
	lines := geometry.Lines(f.Geometry)
	if len(lines) != 1 || len(lines[0]) < 2 {
		return nil, &ErrNotALine{ID: id, Kind: geometryKind(f.Geometry)}
	}
	return lines[0], nil
}

// nearest finds the closest endpoint pair between own and any eligible
// feature, own included. A line never pairs an endpoint with itself. Ties
// keep the lowest neighbour id, then start before end.
func (c *Connector) nearest(id int64, own orb.LineString) (bridge, bool, error) {
	ends := orb.MultiPoint{geometry.StartPoint(own), geometry.EndPoint(own)}
	hits, err := c.store.NearestWithin(ends, c.Threshold, store.All(c.Eligible, c.live()))
	if err != nil {
		return bridge{}, false, err
	}

	best := bridge{distance: math.Inf(1)}
	found := false
	for _, hit := range sortedIDs(hits) {
		var other orb.LineString
		if hit == id {
			other = own
		} else {
			f, err := c.store.Get(hit)
			if err != nil {
				return bridge{}, false, err
			}
			lines := geometry.Lines(f.Geometry)
			if len(lines) != 1 || len(lines[0]) < 2 {
				continue
			}
			other = lines[0]
		}
		theirs := []orb.Point{geometry.StartPoint(other), geometry.EndPoint(other)}
		for i, p := range ends {
			for j, q := range theirs {
				if hit == id && i == j {
					continue
				}
				d := planar.Distance(p, q)
				if d < c.Threshold && d < best.distance {
					best = bridge{neighbor: hit, from: p, to: q, distance: d}
					found = true
				}
			}
		}
	}
	return best, found, nil
}

func (c *Connector) live() store.Filter {
	return func(f *feature.Feature) bool {
		return !c.Consumed(f.ID)
	}
}

func sortedIDs(hits []store.Neighbor) []int64 {
	ids := make([]int64, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	sortInt64s(ids)
	return ids
}
