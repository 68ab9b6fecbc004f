package store

import (
	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
)

var _ Store = (*MemStore)(nil)

// Dataset is the working set of one map dataset: one store per partition,
// all drawing ids from the same sequence.
type Dataset struct {
	Prefix   string
	Lines    *MemStore
	Points   *MemStore
	Polygons *MemStore
}

// NewDataset returns an empty dataset whose synthetic features get ids
// starting at sequenceStart (or above the largest loaded id).
func NewDataset(prefix string, engine geometry.Engine, sequenceStart int64) *Dataset {
	seq := NewSequence(sequenceStart)
	return &Dataset{
		Prefix:   prefix,
		Lines:    NewMemStore(feature.Lines, engine, seq),
		Points:   NewMemStore(feature.Points, engine, seq),
		Polygons: NewMemStore(feature.Polygons, engine, seq),
	}
}

// Partition returns the store of a partition.
func (d *Dataset) Partition(p feature.Partition) *MemStore {
	switch p {
	case feature.Points:
		return d.Points
	case feature.Polygons:
		return d.Polygons
	default:
		return d.Lines
	}
}

// Table returns the table name of a partition, e.g. "harn_lines".
func (d *Dataset) Table(p feature.Partition) string {
	return d.Prefix + "_" + p.String()
}
