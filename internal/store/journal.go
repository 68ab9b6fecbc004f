package store

import "sort"

// Instruction is the net effect of a run on one feature id.
type Instruction int

const (
	// Insert means the feature was created during the run.
	Insert Instruction = 1

	// Delete means a loaded feature was removed.
	Delete Instruction = 2

	// Modify means a loaded feature changed geometry, type or name.
	Modify Instruction = 3
)

func (i Instruction) String() string {
	switch i {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Modify:
		return "modify"
	default:
		return "unknown"
	}
}

// Change is one journal entry.
type Change struct {
	ID          int64
	Instruction Instruction
}

// journal collapses every mutation of a run into one instruction per id.
//
//	insert, then modify  -> insert
//	insert, then delete  -> nothing
//	modify, then delete  -> delete
//	loaded, then modify  -> modify
type journal struct {
	entries map[int64]Instruction
}

func newJournal() *journal {
	return &journal{entries: make(map[int64]Instruction)}
}

func (j *journal) inserted(id int64) {
	j.entries[id] = Insert
}

func (j *journal) modified(id int64) {
	if _, ok := j.entries[id]; ok {
		return
	}
	j.entries[id] = Modify
}

func (j *journal) deleted(id int64) {
	if j.entries[id] == Insert {
		delete(j.entries, id)
		return
	}
	j.entries[id] = Delete
}

func (j *journal) changes() []Change {
	out := make([]Change, 0, len(j.entries))
	for id, in := range j.entries {
		out = append(out, Change{ID: id, Instruction: in})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}
