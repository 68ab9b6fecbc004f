package topology

import "fmt"

// ErrEmptyBag indicates that healing dropped every fragment without
// converging. Well-formed input never triggers it.
type ErrEmptyBag struct {
	ID int64
}

func (e *ErrEmptyBag) Error() string {
	return fmt.Sprintf("heal feature %d: fragment bag emptied before convergence", e.ID)
}

// ErrNotALine indicates a line operation on a feature whose geometry is not
// a single line.
type ErrNotALine struct {
	ID   int64
	Kind string
}

func (e *ErrNotALine) Error() string {
	return fmt.Sprintf("feature %d: expected a line, got %s", e.ID, e.Kind)
}
