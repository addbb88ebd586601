package configtypes

// TypeMeta is the pre-computed metadata for one config type. Values are owned
// by the snapshot that produced them and must be treated as read-only.
type TypeMeta struct {
	Key              string          `json:"key" yaml:"key"`
	Kind             Kind            `json:"kind" yaml:"kind"`
	Description      string          `json:"description,omitempty" yaml:"description,omitempty"`
	GivenName        string          `json:"given_name,omitempty" yaml:"given_name,omitempty"`
	TypeParamKeys    []string        `json:"type_param_keys,omitempty" yaml:"type_param_keys,omitempty"`
	InnerTypeKey     string          `json:"inner_type_key,omitempty" yaml:"inner_type_key,omitempty"`
	ScalarTypeKey    string          `json:"scalar_type_key,omitempty" yaml:"scalar_type_key,omitempty"`
	NonScalarTypeKey string          `json:"non_scalar_type_key,omitempty" yaml:"non_scalar_type_key,omitempty"`
	EnumValues       []EnumValueMeta `json:"enum_values,omitempty" yaml:"enum_values,omitempty"`
	Fields           []FieldMeta     `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// FieldMeta describes one field of a composite type. Names are unique within
// the parent type.
type FieldMeta struct {
	Name              string `json:"name" yaml:"name"`
	Description       string `json:"description,omitempty" yaml:"description,omitempty"`
	TypeKey           string `json:"type_key" yaml:"type_key"`
	IsRequired        bool   `json:"is_required" yaml:"is_required"`
	DefaultProvided   bool   `json:"default_provided,omitempty" yaml:"default_provided,omitempty"`
	DefaultValueAsStr string `json:"default_value_as_str,omitempty" yaml:"default_value_as_str,omitempty"`
}

// EnumValueMeta describes one permitted enum value.
type EnumValueMeta struct {
	Value       string `json:"value" yaml:"value"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ChildTypeKeys returns the keys this type references directly: the inner key
// for wrapping kinds, each field type key for composites, the scalar and
// non-scalar keys for scalar unions, and nothing for leaves.
func (m TypeMeta) ChildTypeKeys() []string {
	switch {
	case m.Kind.IsWrapping():
		return []string{m.InnerTypeKey}
	case m.Kind.HasFields():
		keys := make([]string, 0, len(m.Fields))
		for _, field := range m.Fields {
			keys = append(keys, field.TypeKey)
		}
		return keys
	case m.Kind == KindScalarUnion:
		return []string{m.ScalarTypeKey, m.NonScalarTypeKey}
	default:
		return nil
	}
}

// Snapshot is the immutable key-indexed schema supplied by the caller.
// ConfigMeta must fail with an error wrapping ErrUnknownKey when key is absent.
type Snapshot interface {
	ConfigMeta(key string) (TypeMeta, error)
}

// VersionedSnapshot is a Snapshot that carries a stable identifier. Closure
// caching only engages for snapshots that implement it with a non-empty id.
type VersionedSnapshot interface {
	Snapshot
	SnapshotID() string
}

// ScopedSnapshot is a VersionedSnapshot that also names its instance. Two
// snapshots sharing an id must report different scopes when their contents
// differ. The closure cache keys entries by scope when one is reported, so a
// reused id never reads closures written against an earlier instance.
type ScopedSnapshot interface {
	VersionedSnapshot
	CacheScope() string
}

func snapshotID(snapshot Snapshot) string {
	if versioned, ok := snapshot.(VersionedSnapshot); ok {
		return versioned.SnapshotID()
	}
	return ""
}

func cacheScope(snapshot Snapshot) string {
	if scoped, ok := snapshot.(ScopedSnapshot); ok {
		return scoped.CacheScope()
	}
	return snapshotID(snapshot)
}
