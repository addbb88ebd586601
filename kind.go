package configtypes

import "strings"

// Kind classifies a config type. The set is closed: every TypeMeta in a
// well-formed snapshot carries one of the constants below.
type Kind string

const (
	KindAny             Kind = "ANY"
	KindScalar          Kind = "SCALAR"
	KindEnum            Kind = "ENUM"
	KindSelector        Kind = "SELECTOR"
	KindStrictShape     Kind = "STRICT_SHAPE"
	KindPermissiveShape Kind = "PERMISSIVE_SHAPE"
	KindArray           Kind = "ARRAY"
	KindNoneable        Kind = "NONEABLE"
	KindScalarUnion     Kind = "SCALAR_UNION"
)

var knownKinds = []Kind{
	KindAny,
	KindScalar,
	KindEnum,
	KindSelector,
	KindStrictShape,
	KindPermissiveShape,
	KindArray,
	KindNoneable,
	KindScalarUnion,
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	return append([]Kind(nil), knownKinds...)
}

// ParseKind converts value into a Kind. Matching is case-insensitive and
// ignores surrounding whitespace. The second return is false for values that
// name no known kind.
func ParseKind(value string) (Kind, bool) {
	candidate := Kind(strings.ToUpper(strings.TrimSpace(value)))
	if candidate.IsKnown() {
		return candidate, true
	}
	return candidate, false
}

// IsKnown reports whether k is part of the closed kind set.
func (k Kind) IsKnown() bool {
	for _, known := range knownKinds {
		if k == known {
			return true
		}
	}
	return false
}

// HasFields reports whether k is one of the composite, field-bearing kinds.
func (k Kind) HasFields() bool {
	switch k {
	case KindSelector, KindStrictShape, KindPermissiveShape:
		return true
	default:
		return false
	}
}

// IsWrapping reports whether k wraps exactly one inner type.
func (k Kind) IsWrapping() bool {
	return k == KindArray || k == KindNoneable
}

func (k Kind) String() string {
	return string(k)
}
