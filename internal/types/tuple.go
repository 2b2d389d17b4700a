package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// TupleInfo stores the element types for a tuple type.
type TupleInfo struct {
	Elems []TypeID
}

// RegisterTuple creates or finds an existing tuple type with the given
// elements. Tuples with identical element sequences share one TypeID, so
// the empty composite is interned exactly once.
func (in *Interner) RegisterTuple(elems []TypeID) TypeID {
	if in.tupleIndex == nil {
		in.tupleIndex = make(map[string]TypeID)
	}
	key := tupleIndexKey(elems)
	if id, ok := in.tupleIndex[key]; ok {
		return id
	}
	slot := in.appendTupleInfo(TupleInfo{Elems: elems})
	id := in.internRaw(Type{Kind: KindTuple, Payload: slot})
	in.tupleIndex[key] = id
	return id
}

// TupleElems returns the element types for a tuple TypeID.
func (in *Interner) TupleElems(id TypeID) ([]TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTuple {
		return nil, false
	}
	if int(tt.Payload) >= len(in.tuples) {
		return nil, false
	}
	return in.tuples[tt.Payload].Elems, true
}

func (in *Interner) appendTupleInfo(info TupleInfo) uint32 {
	elems := make([]TypeID, len(info.Elems))
	copy(elems, info.Elems)
	in.tuples = append(in.tuples, TupleInfo{Elems: elems})
	slot, err := safecast.Conv[uint32](len(in.tuples) - 1)
	if err != nil {
		panic(fmt.Errorf("tuple info overflow: %w", err))
	}
	return slot
}

func tupleIndexKey(elems []TypeID) string {
	var sb strings.Builder
	for _, e := range elems {
		fmt.Fprintf(&sb, "%d,", e)
	}
	return sb.String()
}
