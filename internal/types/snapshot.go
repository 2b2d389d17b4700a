package types

import (
	"fmt"
)

// Snapshot is a serializable dump of interner state, used by body
// artifacts. TypeIDs stay valid across a snapshot/restore round trip.
type Snapshot struct {
	Types     []Type
	Tuples    []TupleInfo
	NextInfer uint32
}

// Snapshot copies the interner state into a serializable form.
func (in *Interner) Snapshot() Snapshot {
	s := Snapshot{
		Types:     make([]Type, len(in.types)),
		Tuples:    make([]TupleInfo, len(in.tuples)),
		NextInfer: in.nextInfer,
	}
	copy(s.Types, in.types)
	for i, ti := range in.tuples {
		elems := make([]TypeID, len(ti.Elems))
		copy(elems, ti.Elems)
		s.Tuples[i] = TupleInfo{Elems: elems}
	}
	return s
}

// FromSnapshot rebuilds an interner from a snapshot. The snapshot must
// start with the builtin seed NewInterner lays down, otherwise the stored
// TypeIDs would not line up.
func FromSnapshot(s Snapshot) (*Interner, error) {
	seed := NewInterner()
	if len(s.Types) < len(seed.types) || len(s.Tuples) < 1 {
		return nil, fmt.Errorf("types: snapshot shorter than builtin seed")
	}
	for i, tt := range seed.types {
		if s.Types[i] != tt {
			return nil, fmt.Errorf("types: snapshot builtin %d does not match seed", i)
		}
	}

	in := &Interner{
		index:    make(map[typeKey]TypeID, len(s.Types)),
		builtins: seed.builtins,
		types:    make([]Type, len(s.Types)),
		tuples:   make([]TupleInfo, len(s.Tuples)),
	}
	copy(in.types, s.Types)
	for i, ti := range s.Tuples {
		elems := make([]TypeID, len(ti.Elems))
		copy(elems, ti.Elems)
		in.tuples[i] = TupleInfo{Elems: elems}
	}
	in.nextInfer = s.NextInfer

	in.tupleIndex = make(map[string]TypeID)
	for id, tt := range in.types {
		in.index[typeKey(tt)] = TypeID(id)
		if tt.Kind == KindTuple {
			if int(tt.Payload) >= len(in.tuples) {
				return nil, fmt.Errorf("types: tuple payload %d out of range", tt.Payload)
			}
			in.tupleIndex[tupleIndexKey(in.tuples[tt.Payload].Elems)] = TypeID(id)
		}
	}
	return in, nil
}
