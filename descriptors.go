package configtypes

import "sort"

// ConfigType is the polymorphic descriptor for one config type. The concrete
// value is always one of *RegularConfigType, *EnumConfigType,
// *CompositeConfigType, *ArrayConfigType, *NullableConfigType or
// *ScalarUnionConfigType; the interface is sealed so type switches over those
// six cases are exhaustive.
//
// Descriptors are views over a single Session. Child descriptors are resolved
// inline, against the same snapshot, when the corresponding method is called.
type ConfigType interface {
	Key() string
	Description() string
	Kind() Kind
	IsSelector() bool
	TypeParamKeys() []string
	// RecursiveConfigTypes resolves every type transitively reachable from this
	// type. Fetching each of N types independently and asking for its closure
	// costs O(N²) overall; callers that already hold the full schema should walk
	// TypeParamKeys and field type keys themselves instead.
	RecursiveConfigTypes() ([]ConfigType, error)

	sealed()
}

// WrappingConfigType is implemented by the array and nullable variants.
type WrappingConfigType interface {
	ConfigType
	OfTypeKey() string
	OfType() (ConfigType, error)
}

type descriptor struct {
	session *Session
	meta    TypeMeta
}

func (d *descriptor) Key() string {
	return d.meta.Key
}

func (d *descriptor) Description() string {
	return d.meta.Description
}

func (d *descriptor) Kind() Kind {
	return d.meta.Kind
}

func (d *descriptor) IsSelector() bool {
	return d.meta.Kind == KindSelector
}

func (d *descriptor) TypeParamKeys() []string {
	if len(d.meta.TypeParamKeys) == 0 {
		return []string{}
	}
	return append([]string(nil), d.meta.TypeParamKeys...)
}

func (d *descriptor) RecursiveConfigTypes() ([]ConfigType, error) {
	keys, err := d.session.recursiveTypeKeys(d.meta)
	if err != nil {
		return nil, err
	}
	out := make([]ConfigType, 0, len(keys))
	for _, key := range keys {
		resolved, err := d.session.Resolve(key)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

func (d *descriptor) sealed() {}

// RegularConfigType covers the SCALAR and ANY kinds.
type RegularConfigType struct {
	descriptor
}

// GivenName returns the scalar's public name, e.g. "String" or "Int".
func (t *RegularConfigType) GivenName() string {
	return t.meta.GivenName
}

// EnumConfigType lists the permitted values of an enum.
type EnumConfigType struct {
	descriptor
}

// GivenName returns the enum's public name.
func (t *EnumConfigType) GivenName() string {
	return t.meta.GivenName
}

// Values returns the enum values in declaration order.
func (t *EnumConfigType) Values() []EnumConfigValue {
	values := make([]EnumConfigValue, 0, len(t.meta.EnumValues))
	for _, value := range t.meta.EnumValues {
		values = append(values, EnumConfigValue{
			Value:       value.Value,
			Description: value.Description,
		})
	}
	return values
}

// EnumConfigValue is one permitted value of an enum type.
type EnumConfigValue struct {
	Value       string
	Description string
}

// CompositeConfigType covers every field-bearing kind, selectors included.
type CompositeConfigType struct {
	descriptor
}

// Fields returns the composite's fields sorted by name. Consumers render
// fields in this order, so declaration order is never exposed.
func (t *CompositeConfigType) Fields() []ConfigTypeField {
	fields := make([]ConfigTypeField, 0, len(t.meta.Fields))
	for _, field := range t.meta.Fields {
		fields = append(fields, ConfigTypeField{session: t.session, meta: field})
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].meta.Name < fields[j].meta.Name
	})
	return fields
}

// Field looks up a field by name.
func (t *CompositeConfigType) Field(name string) (ConfigTypeField, bool) {
	for _, field := range t.meta.Fields {
		if field.Name == name {
			return ConfigTypeField{session: t.session, meta: field}, true
		}
	}
	return ConfigTypeField{}, false
}

// ConfigTypeField is one field of a composite type.
type ConfigTypeField struct {
	session *Session
	meta    FieldMeta
}

func (f ConfigTypeField) Name() string {
	return f.meta.Name
}

func (f ConfigTypeField) Description() string {
	return f.meta.Description
}

// ConfigTypeKey returns the key of the field's type without resolving it.
func (f ConfigTypeField) ConfigTypeKey() string {
	return f.meta.TypeKey
}

// DefaultValue returns the stringified default and whether one was provided.
func (f ConfigTypeField) DefaultValue() (string, bool) {
	if !f.meta.DefaultProvided {
		return "", false
	}
	return f.meta.DefaultValueAsStr, true
}

func (f ConfigTypeField) IsOptional() bool {
	return !f.meta.IsRequired
}

// ConfigType resolves the field's type.
func (f ConfigTypeField) ConfigType() (ConfigType, error) {
	return f.session.Resolve(f.meta.TypeKey)
}

// ArrayConfigType wraps the element type of a list.
type ArrayConfigType struct {
	descriptor
}

func (t *ArrayConfigType) OfTypeKey() string {
	return t.meta.InnerTypeKey
}

func (t *ArrayConfigType) OfType() (ConfigType, error) {
	return t.session.Resolve(t.meta.InnerTypeKey)
}

// NullableConfigType wraps a type that also accepts null.
type NullableConfigType struct {
	descriptor
}

func (t *NullableConfigType) OfTypeKey() string {
	return t.meta.InnerTypeKey
}

func (t *NullableConfigType) OfType() (ConfigType, error) {
	return t.session.Resolve(t.meta.InnerTypeKey)
}

// ScalarUnionConfigType accepts either a scalar or a non-scalar shape.
type ScalarUnionConfigType struct {
	descriptor
}

func (t *ScalarUnionConfigType) ScalarTypeKey() string {
	return t.meta.ScalarTypeKey
}

func (t *ScalarUnionConfigType) NonScalarTypeKey() string {
	return t.meta.NonScalarTypeKey
}

func (t *ScalarUnionConfigType) ScalarType() (ConfigType, error) {
	return t.session.Resolve(t.meta.ScalarTypeKey)
}

func (t *ScalarUnionConfigType) NonScalarType() (ConfigType, error) {
	return t.session.Resolve(t.meta.NonScalarTypeKey)
}

var (
	_ ConfigType         = (*RegularConfigType)(nil)
	_ ConfigType         = (*EnumConfigType)(nil)
	_ ConfigType         = (*CompositeConfigType)(nil)
	_ ConfigType         = (*ScalarUnionConfigType)(nil)
	_ WrappingConfigType = (*ArrayConfigType)(nil)
	_ WrappingConfigType = (*NullableConfigType)(nil)
)
