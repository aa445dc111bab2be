package portable

import (
	"testing"
)

// TestHandleOfIdentity tests that handles compare by identity, not by value
func TestHandleOfIdentity(t *testing.T) {
	a := &testNode{Name: "same"}
	b := &testNode{Name: "same"}

	ha, ok := handleOf(a)
	if !ok {
		t.Fatal("Pointer should have an identity")
	}
	ha2, _ := handleOf(a)
	hb, _ := handleOf(b)

	if ha != ha2 {
		t.Error("Same instance should yield the same handle")
	}
	if ha == hb {
		t.Error("Equal but distinct instances must not share a handle")
	}
}

// TestHandleOfKinds tests which kinds of values take part in handle tracking
func TestHandleOfKinds(t *testing.T) {
	arr := []byte{1, 2, 3, 4}
	var nilPtr *testNode

	testCases := []struct {
		name     string
		value    interface{}
		identity bool
	}{
		{"Pointer", &testNode{}, true},
		{"Map", map[int]int{}, true},
		{"Slice", arr, true},
		{"Struct", testValue{A: 1}, false},
		{"Int", 42, false},
		{"String", "text", false},
		{"NilPointer", nilPtr, false},
		{"ZeroSizePointer", &struct{}{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := handleOf(tc.value)
			if ok != tc.identity {
				t.Errorf("Expected identity %t, got %t", tc.identity, ok)
			}
		})
	}
}

// TestHandleOfSubslice tests that slices sharing a backing array but not a length are distinct
func TestHandleOfSubslice(t *testing.T) {
	arr := []byte{1, 2, 3, 4}
	full, _ := handleOf(arr)
	prefix, _ := handleOf(arr[:2])

	if full == prefix {
		t.Error("Slices of different length must not share a handle")
	}
}

// TestHandleTableRegister tests that entries are never overwritten
func TestHandleTableRegister(t *testing.T) {
	table := newHandleTable()
	n := &testNode{}
	h, _ := handleOf(n)

	if _, ok := table.lookup(h); ok {
		t.Fatal("Empty table should not contain the handle")
	}

	table.register(h, n, 10)
	table.register(h, n, 99)

	pos, ok := table.lookup(h)
	if !ok {
		t.Fatal("Handle should be registered")
	}
	if pos != 10 {
		t.Errorf("Expected first registered offset 10, got %d", pos)
	}
	if table.size() != 1 {
		t.Errorf("Expected 1 entry, got %d", table.size())
	}
}

// TestHandleTableRollback tests that rollback drops the instances written after an offset
func TestHandleTableRollback(t *testing.T) {
	table := newHandleTable()
	before, after := &testNode{Name: "before"}, &testNode{Name: "after"}
	hb, _ := handleOf(before)
	ha, _ := handleOf(after)

	table.register(hb, before, 0)
	table.register(ha, after, 20)
	table.rollback(20)

	if _, ok := table.lookup(hb); !ok {
		t.Error("Instance before the offset should be kept")
	}
	if _, ok := table.lookup(ha); ok {
		t.Error("Instance at the offset should be removed")
	}
}

// TestWriteZeroSizeInstancesNotShared tests that distinct zero-size instances are never merged
func TestWriteZeroSizeInstancesNotShared(t *testing.T) {
	r := NewTypeRegistry(nil)
	type empty struct{}
	r.MustRegister(&empty{}, TypeConfig{
		TypeName:   "empty",
		Serializer: PortableSerializerFunc(func(obj interface{}, w IPortableWriter) error { return nil }),
	})

	ctx := newWriteContext(r, NewStream(0, 0))
	if err := ctx.Write([]interface{}{&empty{}, &empty{}}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if ctx.records != 2 || ctx.backRefs != 0 {
		t.Errorf("Expected 2 records and no back-references, got %d and %d", ctx.records, ctx.backRefs)
	}
}
