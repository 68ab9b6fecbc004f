package store

import (
	"fmt"

	"github.com/beetlebugorg/maptopo/internal/feature"
)

// ErrUnknownFeature indicates a reference to an id that is not live.
type ErrUnknownFeature struct {
	ID        int64
	Partition feature.Partition
}

func (e *ErrUnknownFeature) Error() string {
	return fmt.Sprintf("unknown feature %d in %s", e.ID, e.Partition)
}

// ErrDuplicateFeature indicates a load of an id that is already live.
type ErrDuplicateFeature struct {
	ID        int64
	Partition feature.Partition
}

func (e *ErrDuplicateFeature) Error() string {
	return fmt.Sprintf("duplicate feature %d in %s", e.ID, e.Partition)
}
