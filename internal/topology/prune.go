package topology

import (
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/sirupsen/logrus"
)

// minLineVertices is the vertex count below which a digitised line is an
// artifact.
const minLineVertices = 4

// Prune deletes the matching lines that have fewer than four vertices or
// are shorter than minLength. It returns the number of features deleted.
func Prune(s store.Store, filter store.Filter, minLength float64, log logrus.FieldLogger) (int, error) {
	pruned := 0
	for _, id := range s.Select(filter) {
		f, err := s.Get(id)
		if err != nil {
			return pruned, err
		}
		n := geometry.NumPoints(f.Geometry)
		length := geometry.Length(f.Geometry)
		if n >= minLineVertices && length >= minLength {
			continue
		}
		if err := s.Delete(id); err != nil {
			return pruned, err
		}
		pruned++
		log.WithFields(logrus.Fields{
			"id":       id,
			"vertices": n,
			"length":   length,
		}).Debug("pruned")
	}
	return pruned, nil
}
