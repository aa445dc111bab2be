package portable

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

// TestRegistryDefaults tests the defaults applied on registration
func TestRegistryDefaults(t *testing.T) {
	r := newTestRegistry(t)

	desc, ok := r.Lookup(reflect.TypeOf(&testNode{}))
	if !ok {
		t.Fatal("testNode should be registered")
	}
	if desc.TypeName != "testNode" {
		t.Errorf("Expected type name testNode, got %s", desc.TypeName)
	}
	if desc.TypeID != nameHash("testNode") {
		t.Errorf("Expected type id %d, got %d", nameHash("testNode"), desc.TypeID)
	}
	if !desc.UserType {
		t.Error("Expected user type")
	}
	if desc.IdResolver != r.IdResolver() {
		t.Error("Expected registry resolver as default")
	}

	byID, ok := r.ByID(desc.TypeID)
	if !ok || byID != desc {
		t.Error("ByID should return the same descriptor")
	}
}

// TestRegistryExplicitConfig tests that explicit settings override the defaults
func TestRegistryExplicitConfig(t *testing.T) {
	r := NewTypeRegistry(nil)
	type point struct{ X, Y int32 }

	desc, err := r.Register(&point{}, TypeConfig{
		TypeName:   "geo.Point",
		TypeID:     1000,
		SystemType: true,
		Serializer: PortableSerializerFunc(func(obj interface{}, w IPortableWriter) error { return nil }),
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if desc.TypeID != 1000 || desc.TypeName != "geo.Point" || desc.UserType {
		t.Errorf("Unexpected descriptor: %+v", desc)
	}

	// the user type flag is written as false
	data := encode(t, r, &point{})
	if data[offsetUserType] != 0 {
		t.Errorf("Expected user type flag 0, got %d", data[offsetUserType])
	}
}

// TestRegistryErrors tests invalid registrations
func TestRegistryErrors(t *testing.T) {
	noop := PortableSerializerFunc(func(obj interface{}, w IPortableWriter) error { return nil })
	type plain struct{}
	type other struct{}

	testCases := []struct {
		name   string
		setup  func(r *TypeRegistry)
		sample interface{}
		config TypeConfig
		is     error
	}{
		{name: "NilSample", sample: nil, config: TypeConfig{Serializer: noop}},
		{name: "SystemType", sample: int32(0), config: TypeConfig{Serializer: noop}},
		{name: "NoSerializer", sample: &plain{}, config: TypeConfig{}},
		{name: "Unnamed", sample: &struct{}{}, config: TypeConfig{Serializer: noop}},
		{
			name:   "DuplicateType",
			setup:  func(r *TypeRegistry) { r.MustRegister(&plain{}, TypeConfig{Serializer: noop}) },
			sample: &plain{},
			config: TypeConfig{Serializer: noop},
			is:     ErrDuplicateType,
		},
		{
			name:   "DuplicateID",
			setup:  func(r *TypeRegistry) { r.MustRegister(&plain{}, TypeConfig{TypeID: 7, Serializer: noop}) },
			sample: &other{},
			config: TypeConfig{TypeID: 7, Serializer: noop},
			is:     ErrDuplicateType,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewTypeRegistry(nil)
			if tc.setup != nil {
				tc.setup(r)
			}
			_, err := r.Register(tc.sample, tc.config)
			if err == nil {
				t.Fatal("Expected registration error")
			}
			if tc.is != nil && !errors.Is(err, tc.is) {
				t.Errorf("Expected %v, got %v", tc.is, err)
			}
		})
	}
}

// TestRegistryMustRegisterPanics tests that MustRegister panics on error
func TestRegistryMustRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic")
		}
	}()
	NewTypeRegistry(nil).MustRegister(nil, TypeConfig{})
}

// TestRegistryDescriptorsOrdered tests that descriptors are returned by type id
func TestRegistryDescriptorsOrdered(t *testing.T) {
	r := newTestRegistry(t)
	descs := r.Descriptors()

	if len(descs) != 6 {
		t.Fatalf("Expected 6 descriptors, got %d", len(descs))
	}
	for i := 1; i < len(descs); i++ {
		if descs[i-1].TypeID >= descs[i].TypeID {
			t.Errorf("Descriptors not ordered: %d before %d", descs[i-1].TypeID, descs[i].TypeID)
		}
	}
}

// TestRegistryConcurrentLookup tests lookups while other goroutines encode
func TestRegistryConcurrentLookup(t *testing.T) {
	r := newTestRegistry(t)
	m := NewMarshaller(r, Config{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			shared := &testNode{Name: "shared"}
			for j := 0; j < 100; j++ {
				root := &testNode{Name: "root", Value: int32(i*j), Next: shared, Other: shared}
				if _, err := m.Marshal(root); err != nil {
					t.Errorf("Marshal failed: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if got := m.Stats().Encodes; got != 800 {
		t.Errorf("Expected 800 encodes, got %d", got)
	}
}
