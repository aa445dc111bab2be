package portable

import (
	"strings"
)

// NewDefaultIdResolver returns the id resolver used when a type is registered
// without one. Ids are the 31-multiplier string hash of the lower-cased name,
// so independently written clients derive the same ids from the same names.
func NewDefaultIdResolver() IIdResolver {
	return defaultIdResolver{}
}

type defaultIdResolver struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see portable.IIdResolver)
// --------------------------------------------------------------------------

func (defaultIdResolver) TypeID(typeName string) int32 {
	return nameHash(typeName)
}

func (defaultIdResolver) FieldID(_ int32, fieldName string) int32 {
	return nameHash(fieldName)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// nameHash hashes the lower-cased UTF-16 code units of name.
// A zero hash for a non-empty name is remapped to 1, zero means "no id".
func nameHash(name string) int32 {
	if name == "" {
		return 0
	}

	var h int32
	for _, r := range strings.ToLower(name) {
		if r >= 0x10000 {
			// surrogate pair
			r -= 0x10000
			h = 31*h + int32(0xD800+(r>>10))
			h = 31*h + int32(0xDC00+(r&0x3FF))
			continue
		}
		h = 31*h + int32(r)
	}

	if h == 0 {
		return 1
	}
	return h
}
