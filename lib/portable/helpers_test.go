package portable

import (
	"errors"
	"testing"
)

// --------------------------------------------------------------------------
// Test Types
// --------------------------------------------------------------------------

// testNode is a graph node that can be shared and can form cycles
type testNode struct {
	Name  string
	Value int32
	Next  *testNode
	Other *testNode
}

func writeTestNode(obj interface{}, w IPortableWriter) error {
	n := obj.(*testNode)
	if err := w.WriteString("name", n.Name); err != nil {
		return err
	}
	if err := w.WriteInt32("value", n.Value); err != nil {
		return err
	}
	if err := w.WriteObject("next", n.Next); err != nil {
		return err
	}
	return w.WriteObject("other", n.Other)
}

// testRaw writes one named field followed by a raw section
type testRaw struct {
	ID      int64
	Payload []byte
	Tail    string
	Child   *testNode
}

func writeTestRaw(obj interface{}, w IPortableWriter) error {
	r := obj.(*testRaw)
	if err := w.WriteInt64("id", r.ID); err != nil {
		return err
	}
	raw := w.RawWriter()
	if err := raw.WriteBytes(r.Payload); err != nil {
		return err
	}
	if err := raw.WriteString(r.Tail); err != nil {
		return err
	}
	return raw.WriteObject(r.Child)
}

// testHashed supplies its own header hash code
type testHashed struct {
	V int32
}

func (h *testHashed) PortableHashCode() int32 {
	return h.V * 7
}

// testSelfWriting implements IPortable and needs no explicit serializer
type testSelfWriting struct {
	N int64
}

func (s *testSelfWriting) WritePortable(w IPortableWriter) error {
	return w.WriteInt64("n", s.N)
}

// testFailing fails after writing one field
type testFailing struct{}

var errTestFailure = errors.New("serializer failure")

// testValue is a struct registered by value, it has no identity
type testValue struct {
	A int32
}

// newTestRegistry creates a registry with all test types registered
func newTestRegistry(t testing.TB) *TypeRegistry {
	t.Helper()
	r := NewTypeRegistry(nil)

	configs := []struct {
		sample interface{}
		config TypeConfig
	}{
		{&testNode{}, TypeConfig{Serializer: PortableSerializerFunc(writeTestNode)}},
		{&testRaw{}, TypeConfig{Serializer: PortableSerializerFunc(writeTestRaw)}},
		{&testHashed{}, TypeConfig{Serializer: PortableSerializerFunc(func(obj interface{}, w IPortableWriter) error {
			return w.WriteInt32("v", obj.(*testHashed).V)
		})}},
		{&testSelfWriting{}, TypeConfig{}},
		{&testFailing{}, TypeConfig{Serializer: PortableSerializerFunc(func(obj interface{}, w IPortableWriter) error {
			if err := w.WriteInt32("before", 1); err != nil {
				return err
			}
			return errTestFailure
		})}},
		{testValue{}, TypeConfig{Serializer: PortableSerializerFunc(func(obj interface{}, w IPortableWriter) error {
			return w.WriteInt32("a", obj.(testValue).A)
		})}},
	}

	for _, c := range configs {
		if _, err := r.Register(c.sample, c.config); err != nil {
			t.Fatalf("Failed to register %T: %v", c.sample, err)
		}
	}
	return r
}

// encode writes obj with a fresh write context into a new unbounded stream
func encode(t testing.TB, r *TypeRegistry, obj interface{}) []byte {
	t.Helper()
	s := NewStream(64, 0)
	if err := newWriteContext(r, s).Write(obj); err != nil {
		t.Fatalf("Failed to encode %T: %v", obj, err)
	}
	return s.Bytes()
}

// mustRecordReader reads the record at pos with the default resolver
func mustRecordReader(t testing.TB, data []byte, pos int) *RecordReader {
	t.Helper()
	rec, err := ReadRecord(data, pos)
	if err != nil {
		t.Fatalf("Failed to read record at %d: %v", pos, err)
	}
	rr, err := NewRecordReader(rec, nil)
	if err != nil {
		t.Fatalf("Failed to index record at %d: %v", pos, err)
	}
	return rr
}
