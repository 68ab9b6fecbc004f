package geojsonfile

import "fmt"

// ErrInvalidFile indicates a partition file that is not a usable feature
// collection.
type ErrInvalidFile struct {
	Path   string
	Reason string
}

func (e *ErrInvalidFile) Error() string {
	return fmt.Sprintf("invalid dataset file %s: %s", e.Path, e.Reason)
}
