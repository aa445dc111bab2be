package portable

import (
	"reflect"
)

// objectHandle identifies an object by identity, not by value.
// Two distinct instances with equal content never share a handle.
type objectHandle struct {
	typ reflect.Type
	ptr uintptr
	len int // slices with the same backing array but different length are distinct
}

// handleOf builds the identity key of obj. The second return value is false
// for values without identity (structs, scalars, ...), they are never deduplicated.
func handleOf(obj interface{}) (objectHandle, bool) {
	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Pointer:
		// pointers to zero-size values may all share one address
		if v.IsNil() || v.Type().Elem().Size() == 0 {
			return objectHandle{}, false
		}
		return objectHandle{typ: v.Type(), ptr: v.Pointer()}, true
	case reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if v.IsNil() {
			return objectHandle{}, false
		}
		return objectHandle{typ: v.Type(), ptr: v.Pointer()}, true
	case reflect.Slice:
		if v.IsNil() {
			return objectHandle{}, false
		}
		return objectHandle{typ: v.Type(), ptr: v.Pointer(), len: v.Len()}, true
	default:
		return objectHandle{}, false
	}
}

// handleEntry stores the absolute stream offset of a written record.
// The object itself is kept so its address can't be reused during the encode.
type handleEntry struct {
	obj interface{}
	pos int
}

// handleTable maps already written instances to their record offset.
// It lives for exactly one encode operation and is never pruned.
type handleTable struct {
	entries map[objectHandle]handleEntry
}

func newHandleTable() *handleTable {
	return &handleTable{entries: make(map[objectHandle]handleEntry)}
}

// register records the offset of obj. An existing entry is never overwritten.
func (t *handleTable) register(h objectHandle, obj interface{}, pos int) {
	if _, ok := t.entries[h]; ok {
		return
	}
	t.entries[h] = handleEntry{obj: obj, pos: pos}
}

// lookup returns the offset at which the instance identified by h was written
func (t *handleTable) lookup(h objectHandle) (int, bool) {
	e, ok := t.entries[h]
	return e.pos, ok
}

// rollback removes every instance written at or after pos
func (t *handleTable) rollback(pos int) {
	for h, e := range t.entries {
		if e.pos >= pos {
			delete(t.entries, h)
		}
	}
}

// size returns the number of registered instances
func (t *handleTable) size() int {
	return len(t.entries)
}
