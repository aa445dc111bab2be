package portable

import (
	"fmt"
	"github.com/puzpuzpuz/xsync/v3"
	"reflect"
	"sort"
	"sync"
)

// --------------------------------------------------------------------------
// Type Descriptor
// --------------------------------------------------------------------------

// TypeDescriptor describes how values of one Go type are written as full records
type TypeDescriptor struct {
	Type       reflect.Type
	TypeName   string
	TypeID     int32
	UserType   bool
	IdResolver IIdResolver
	Serializer IPortableSerializer
	HashFunc   func(obj interface{}) int32 // optional
}

// hashCode returns the externally supplied hash of obj, or 0 if there is none
func (d *TypeDescriptor) hashCode(obj interface{}) int32 {
	if h, ok := obj.(IPortableHashCoder); ok {
		return h.PortableHashCode()
	}
	if d.HashFunc != nil {
		return d.HashFunc(obj)
	}
	return 0
}

// TypeConfig holds the registration options of a type. Only the fields that
// are set override the defaults.
type TypeConfig struct {
	// TypeName defaults to the name of the Go type (without pointer)
	TypeName string
	// TypeID defaults to IdResolver.TypeID(TypeName)
	TypeID int32
	// SystemType marks a predefined platform type, the user type flag is written as false
	SystemType bool
	// IdResolver defaults to the resolver of the registry
	IdResolver IIdResolver
	// Serializer is required unless the type implements IPortable
	Serializer IPortableSerializer
	// HashFunc supplies the header hash code for types that don't implement IPortableHashCoder
	HashFunc func(obj interface{}) int32
}

// --------------------------------------------------------------------------
// Type Registry
// --------------------------------------------------------------------------

// TypeRegistry maps Go types to their descriptors. It is built once at
// startup and then shared by all encode operations; lookups are lock free.
type TypeRegistry struct {
	byType   *xsync.MapOf[reflect.Type, *TypeDescriptor]
	byID     *xsync.MapOf[int32, *TypeDescriptor]
	resolver IIdResolver
	regMu    sync.Mutex // serializes registrations
}

// NewTypeRegistry creates an empty registry. If resolver is nil the default id resolver is used.
func NewTypeRegistry(resolver IIdResolver) *TypeRegistry {
	if resolver == nil {
		resolver = NewDefaultIdResolver()
	}
	return &TypeRegistry{
		byType:   xsync.NewMapOf[reflect.Type, *TypeDescriptor](),
		byID:     xsync.NewMapOf[int32, *TypeDescriptor](),
		resolver: resolver,
	}
}

// Register adds the type of sample to the registry
func (r *TypeRegistry) Register(sample interface{}, config TypeConfig) (*TypeDescriptor, error) {
	if sample == nil {
		return nil, fmt.Errorf("cannot register nil sample")
	}
	typ := reflect.TypeOf(sample)

	if IsSystemType(typ) {
		return nil, fmt.Errorf("type %v has a built-in encoding and cannot be registered", typ)
	}

	desc := &TypeDescriptor{
		Type:       typ,
		TypeName:   config.TypeName,
		TypeID:     config.TypeID,
		UserType:   !config.SystemType,
		IdResolver: config.IdResolver,
		Serializer: config.Serializer,
		HashFunc:   config.HashFunc,
	}

	// Apply defaults
	if desc.TypeName == "" {
		desc.TypeName = typeName(typ)
		if desc.TypeName == "" {
			return nil, fmt.Errorf("type %v has no name, set TypeConfig.TypeName", typ)
		}
	}
	if desc.IdResolver == nil {
		desc.IdResolver = r.resolver
	}
	if desc.TypeID == 0 {
		desc.TypeID = desc.IdResolver.TypeID(desc.TypeName)
	}
	if desc.Serializer == nil {
		if _, ok := sample.(IPortable); !ok {
			return nil, fmt.Errorf("type %v needs a serializer or must implement IPortable", typ)
		}
		desc.Serializer = PortableSerializerFunc(func(obj interface{}, w IPortableWriter) error {
			return obj.(IPortable).WritePortable(w)
		})
	}

	r.regMu.Lock()
	defer r.regMu.Unlock()

	if _, ok := r.byType.Load(typ); ok {
		return nil, fmt.Errorf("%w: type %v", ErrDuplicateType, typ)
	}
	if other, ok := r.byID.Load(desc.TypeID); ok {
		return nil, fmt.Errorf("%w: type id %d of %s is already used by %s", ErrDuplicateType, desc.TypeID, desc.TypeName, other.TypeName)
	}

	r.byType.Store(typ, desc)
	r.byID.Store(desc.TypeID, desc)

	Logger.Debugf("registered type %s (id=%d, user=%t)", desc.TypeName, desc.TypeID, desc.UserType)

	return desc, nil
}

// MustRegister is like Register but panics on error. Intended for package initialization.
func (r *TypeRegistry) MustRegister(sample interface{}, config TypeConfig) *TypeDescriptor {
	desc, err := r.Register(sample, config)
	if err != nil {
		panic(err)
	}
	return desc
}

// Lookup returns the descriptor registered for typ
func (r *TypeRegistry) Lookup(typ reflect.Type) (*TypeDescriptor, bool) {
	return r.byType.Load(typ)
}

// ByID returns the descriptor registered with the given type id
func (r *TypeRegistry) ByID(id int32) (*TypeDescriptor, bool) {
	return r.byID.Load(id)
}

// IdResolver returns the default id resolver of the registry
func (r *TypeRegistry) IdResolver() IIdResolver {
	return r.resolver
}

// Descriptors returns all registered descriptors ordered by type id
func (r *TypeRegistry) Descriptors() []*TypeDescriptor {
	descs := make([]*TypeDescriptor, 0, r.byType.Size())
	r.byType.Range(func(_ reflect.Type, d *TypeDescriptor) bool {
		descs = append(descs, d)
		return true
	})
	sort.Slice(descs, func(i, j int) bool { return descs[i].TypeID < descs[j].TypeID })
	return descs
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// typeName returns the name of typ, looking through pointers
func typeName(typ reflect.Type) string {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ.Name()
}
