package model

import (
	"fmt"

	"asteroids.ai/internal/protocol"
)

// TableDiff counts what one snapshot did to a table.
type TableDiff struct {
	Created int `json:"created"`
	Merged  int `json:"merged"`
	Dropped int `json:"dropped"`
}

type decodeFunc[T any] func(protocol.Record) (T, error)

// Sparse is a variable-length table of optional entities. Slot i of a
// snapshot always updates slot i of the table; declared ids are not used to
// match entries.
type Sparse[T any] struct {
	name   string
	decode decodeFunc[T]
	slots  []*T
}

func newSparse[T any](name string, decode decodeFunc[T]) Sparse[T] {
	return Sparse[T]{name: name, decode: decode}
}

func (t *Sparse[T]) Len() int { return len(t.slots) }

// At returns the entity in slot i, or nil for an empty or out-of-range slot.
func (t *Sparse[T]) At(i int) *T {
	if i < 0 || i >= len(t.slots) {
		return nil
	}
	return t.slots[i]
}

// Slots returns a copy of the slot list; nil entries are empty slots.
func (t *Sparse[T]) Slots() []*T {
	return append([]*T(nil), t.slots...)
}

// Live returns the occupied slots in slot order.
func (t *Sparse[T]) Live() []*T {
	out := make([]*T, 0, len(t.slots))
	for _, e := range t.slots {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Apply brings the table in line with one snapshot. On error the table is
// left untouched.
func (t *Sparse[T]) Apply(incoming []protocol.Record) (TableDiff, error) {
	staged, err := t.stage(incoming)
	if err != nil {
		return TableDiff{}, err
	}
	return t.commit(staged), nil
}

func (t *Sparse[T]) stage(incoming []protocol.Record) ([]*T, error) {
	staged := make([]*T, len(incoming))
	for i, rec := range incoming {
		if rec == nil {
			continue
		}
		v, err := t.decode(rec)
		if err != nil {
			return nil, protocol.Within(fmt.Sprintf("%s[%d]", t.name, i), err)
		}
		staged[i] = &v
	}
	return staged, nil
}

func (t *Sparse[T]) commit(staged []*T) TableDiff {
	var d TableDiff
	if len(staged) < len(t.slots) {
		for i := len(staged); i < len(t.slots); i++ {
			if t.slots[i] != nil {
				d.Dropped++
			}
			t.slots[i] = nil
		}
		t.slots = t.slots[:len(staged)]
	}
	for len(t.slots) < len(staged) {
		t.slots = append(t.slots, nil)
	}

	for i, v := range staged {
		cur := t.slots[i]
		switch {
		case v == nil:
			if cur != nil {
				d.Dropped++
			}
			t.slots[i] = nil
		case cur == nil:
			t.slots[i] = v
			d.Created++
		default:
			*cur = *v
			d.Merged++
		}
	}
	return d
}

// Dense is a fixed-length table. Its length is set by the first snapshot and
// every later snapshot must match it. Slots are updated by index without
// checking the record's declared id.
type Dense[T any] struct {
	name   string
	decode decodeFunc[T]
	sized  bool
	slots  []*T
}

func newDense[T any](name string, decode decodeFunc[T]) Dense[T] {
	return Dense[T]{name: name, decode: decode}
}

func (t *Dense[T]) Len() int { return len(t.slots) }

func (t *Dense[T]) At(i int) *T {
	if i < 0 || i >= len(t.slots) {
		return nil
	}
	return t.slots[i]
}

func (t *Dense[T]) Slots() []*T {
	return append([]*T(nil), t.slots...)
}

// Sized reports whether the table has received its first snapshot.
func (t *Dense[T]) Sized() bool { return t.sized }

func (t *Dense[T]) Apply(incoming []protocol.Record) (TableDiff, error) {
	staged, err := t.stage(incoming)
	if err != nil {
		return TableDiff{}, err
	}
	return t.commit(staged), nil
}

func (t *Dense[T]) check(n int) error {
	if t.sized && n != len(t.slots) {
		return protocol.Cardinalityf(t.name, "got %d entries, table has %d", n, len(t.slots))
	}
	return nil
}

func (t *Dense[T]) stage(incoming []protocol.Record) ([]T, error) {
	if err := t.check(len(incoming)); err != nil {
		return nil, err
	}
	staged := make([]T, len(incoming))
	for i, rec := range incoming {
		op := fmt.Sprintf("%s[%d]", t.name, i)
		if rec == nil {
			return nil, protocol.Decodef(op, "null entry in fixed table")
		}
		v, err := t.decode(rec)
		if err != nil {
			return nil, protocol.Within(op, err)
		}
		staged[i] = v
	}
	return staged, nil
}

func (t *Dense[T]) commit(staged []T) TableDiff {
	var d TableDiff
	if !t.sized {
		t.slots = make([]*T, len(staged))
		for i := range staged {
			v := staged[i]
			t.slots[i] = &v
		}
		t.sized = true
		d.Created = len(staged)
		return d
	}
	for i := range staged {
		*t.slots[i] = staged[i]
	}
	d.Merged = len(staged)
	return d
}
