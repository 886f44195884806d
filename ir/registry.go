package ir

import (
	"strconv"
	"strings"
)

// TypeRegistry interns Type values so that structurally equal types collapse
// to a single TypeHandle. SPIR-V (and every text target this module emits)
// requires one declaration per distinct type, so every lowering pass that
// materializes a type goes through here rather than appending to a slice
// directly.
type TypeRegistry struct {
	entries []Type
	byKey   map[string]TypeHandle
}

// NewTypeRegistry returns an empty registry ready to accept GetOrCreate calls.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		entries: make([]Type, 0, 16),
		byKey:   make(map[string]TypeHandle, 16),
	}
}

// GetOrCreate interns inner under the given display name, returning the
// handle of a previously-seen structurally identical type if one exists,
// or registering a new entry otherwise. name is cosmetic (used for debug
// output) and does not participate in deduplication.
func (reg *TypeRegistry) GetOrCreate(name string, inner TypeInner) TypeHandle {
	key := reg.structuralKey(inner)
	if existing, seen := reg.byKey[key]; seen {
		return existing
	}

	handle := TypeHandle(len(reg.entries))
	reg.entries = append(reg.entries, Type{Name: name, Inner: inner})
	reg.byKey[key] = handle
	return handle
}

// GetTypes returns every interned type, in registration order. The slice
// returned is the registry's live backing array and must be treated as
// read-only by callers.
func (reg *TypeRegistry) GetTypes() []Type {
	return reg.entries
}

// Lookup resolves a handle back to its Type. ok is false for an out-of-range
// handle.
func (reg *TypeRegistry) Lookup(handle TypeHandle) (Type, bool) {
	if int(handle) >= len(reg.entries) {
		return Type{}, false
	}
	return reg.entries[int(handle)], true
}

// Count reports how many distinct types have been interned so far.
func (reg *TypeRegistry) Count() int {
	return len(reg.entries)
}

// structuralKey builds a string that is equal for two TypeInner values iff
// they describe the same type. The encoding is private to this file: only
// equality of the resulting strings is ever relied on, never their exact
// shape, which leaves room to change it without touching any caller.
func (reg *TypeRegistry) structuralKey(inner TypeInner) string {
	switch t := inner.(type) {
	case ScalarType:
		return reg.scalarKey("sc", t.Kind, t.Width)
	case AtomicType:
		return reg.scalarKey("at", t.Scalar.Kind, t.Scalar.Width)
	case VectorType:
		return joinKey("ve", uintField(t.Size), reg.structuralKey(t.Scalar))
	case MatrixType:
		return joinKey("mx", uintField(t.Columns)+"x"+uintField(t.Rows), reg.structuralKey(t.Scalar))
	case PointerType:
		return joinKey("pt", intField(int64(t.Base)), intField(int64(t.Space)))
	case ArrayType:
		length := "dyn"
		if t.Size.Constant != nil {
			length = uintField(*t.Size.Constant)
		}
		return joinKey("ar", intField(int64(t.Base)), length, uintField(t.Stride))
	case SamplerType:
		if t.Comparison {
			return "sm:cmp"
		}
		return "sm:plain"
	case ImageType:
		var b strings.Builder
		b.WriteString("im:")
		b.WriteString(intField(int64(t.Dim)))
		b.WriteByte(':')
		b.WriteString(boolField(t.Arrayed))
		b.WriteByte(':')
		b.WriteString(intField(int64(t.Class)))
		b.WriteByte(':')
		b.WriteString(boolField(t.Multisampled))
		return b.String()
	case StructType:
		var b strings.Builder
		b.WriteString("st:")
		b.WriteString(uintField(t.Span))
		for _, member := range t.Members {
			b.WriteString(":[")
			b.WriteString(member.Name)
			b.WriteByte(',')
			b.WriteString(intField(int64(member.Type)))
			b.WriteByte(',')
			b.WriteString(uintField(member.Offset))
			b.WriteByte(']')
		}
		return b.String()
	default:
		return "??"
	}
}

// scalarKey formats the two fields shared by ScalarType and AtomicType's
// inner scalar, tagged with prefix so the two never collide.
func (reg *TypeRegistry) scalarKey(prefix string, kind ScalarKind, width uint8) string {
	return joinKey(prefix, intField(int64(kind)), uintField(width))
}

func joinKey(parts ...string) string {
	return strings.Join(parts, ":")
}

func intField[T ~int64 | int](v T) string {
	return strconv.FormatInt(int64(v), 10)
}

func uintField[T ~uint8 | ~uint32 | ~uint64](v T) string {
	return strconv.FormatUint(uint64(v), 10)
}

func boolField(v bool) string {
	if v {
		return "t"
	}
	return "f"
}
