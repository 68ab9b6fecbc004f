package store

// Sequence hands out feature ids for one run. Ids are never reused.
type Sequence struct {
	next int64
}

// NewSequence returns a sequence whose first id is start.
func NewSequence(start int64) *Sequence {
	return &Sequence{next: start}
}

// Next returns a fresh id.
func (s *Sequence) Next() int64 {
	id := s.next
	s.next++
	return id
}

// Observe moves the sequence past an id that entered the run from outside.
func (s *Sequence) Observe(id int64) {
	if id >= s.next {
		s.next = id + 1
	}
}
