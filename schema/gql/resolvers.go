package gql

import (
	"context"

	configtypes "github.com/goliatone/go-configtypes"
)

type queryResolver struct {
	resolver *configtypes.Resolver
}

func (q *queryResolver) ConfigType(ctx context.Context, args struct{ Key string }) (*configTypeResolver, error) {
	session, err := sessionFrom(ctx, q.resolver)
	if err != nil {
		return nil, err
	}
	typ, err := session.Resolve(args.Key)
	if err != nil {
		return nil, err
	}
	return newConfigTypeResolver(typ), nil
}

// commonResolver serves the fields every ConfigType implementation shares.
type commonResolver struct {
	typ configtypes.ConfigType
}

func (r commonResolver) Key() string {
	return r.typ.Key()
}

func (r commonResolver) Description() *string {
	return optionalString(r.typ.Description())
}

func (r commonResolver) IsSelector() bool {
	return r.typ.IsSelector()
}

func (r commonResolver) TypeParamKeys() []string {
	return r.typ.TypeParamKeys()
}

func (r commonResolver) RecursiveConfigTypes() ([]*configTypeResolver, error) {
	types, err := r.typ.RecursiveConfigTypes()
	if err != nil {
		return nil, err
	}
	out := make([]*configTypeResolver, 0, len(types))
	for _, typ := range types {
		out = append(out, newConfigTypeResolver(typ))
	}
	return out, nil
}

// configTypeResolver is the ConfigType interface resolver.
type configTypeResolver struct {
	commonResolver
}

func newConfigTypeResolver(typ configtypes.ConfigType) *configTypeResolver {
	return &configTypeResolver{commonResolver{typ: typ}}
}

func resolved(typ configtypes.ConfigType, err error) (*configTypeResolver, error) {
	if err != nil {
		return nil, err
	}
	return newConfigTypeResolver(typ), nil
}

func (r *configTypeResolver) ToRegularConfigType() (*regularConfigTypeResolver, bool) {
	t, ok := r.typ.(*configtypes.RegularConfigType)
	if !ok {
		return nil, false
	}
	return &regularConfigTypeResolver{commonResolver: r.commonResolver, t: t}, true
}

func (r *configTypeResolver) ToEnumConfigType() (*enumConfigTypeResolver, bool) {
	t, ok := r.typ.(*configtypes.EnumConfigType)
	if !ok {
		return nil, false
	}
	return &enumConfigTypeResolver{commonResolver: r.commonResolver, t: t}, true
}

func (r *configTypeResolver) ToCompositeConfigType() (*compositeConfigTypeResolver, bool) {
	t, ok := r.typ.(*configtypes.CompositeConfigType)
	if !ok {
		return nil, false
	}
	return &compositeConfigTypeResolver{commonResolver: r.commonResolver, t: t}, true
}

func (r *configTypeResolver) ToArrayConfigType() (*wrappingConfigTypeResolver, bool) {
	t, ok := r.typ.(*configtypes.ArrayConfigType)
	if !ok {
		return nil, false
	}
	return &wrappingConfigTypeResolver{commonResolver: r.commonResolver, t: t}, true
}

func (r *configTypeResolver) ToNullableConfigType() (*wrappingConfigTypeResolver, bool) {
	t, ok := r.typ.(*configtypes.NullableConfigType)
	if !ok {
		return nil, false
	}
	return &wrappingConfigTypeResolver{commonResolver: r.commonResolver, t: t}, true
}

func (r *configTypeResolver) ToScalarUnionConfigType() (*scalarUnionConfigTypeResolver, bool) {
	t, ok := r.typ.(*configtypes.ScalarUnionConfigType)
	if !ok {
		return nil, false
	}
	return &scalarUnionConfigTypeResolver{commonResolver: r.commonResolver, t: t}, true
}

type regularConfigTypeResolver struct {
	commonResolver
	t *configtypes.RegularConfigType
}

func (r *regularConfigTypeResolver) GivenName() string {
	return r.t.GivenName()
}

type enumConfigTypeResolver struct {
	commonResolver
	t *configtypes.EnumConfigType
}

func (r *enumConfigTypeResolver) GivenName() string {
	return r.t.GivenName()
}

func (r *enumConfigTypeResolver) Values() []*enumConfigValueResolver {
	values := r.t.Values()
	out := make([]*enumConfigValueResolver, 0, len(values))
	for _, value := range values {
		out = append(out, &enumConfigValueResolver{v: value})
	}
	return out
}

type compositeConfigTypeResolver struct {
	commonResolver
	t *configtypes.CompositeConfigType
}

func (r *compositeConfigTypeResolver) Fields() []*configTypeFieldResolver {
	fields := r.t.Fields()
	out := make([]*configTypeFieldResolver, 0, len(fields))
	for _, field := range fields {
		out = append(out, &configTypeFieldResolver{f: field})
	}
	return out
}

// wrappingConfigTypeResolver serves both ArrayConfigType and
// NullableConfigType; they differ only in their type name.
type wrappingConfigTypeResolver struct {
	commonResolver
	t configtypes.WrappingConfigType
}

func (r *wrappingConfigTypeResolver) OfType() (*configTypeResolver, error) {
	return resolved(r.t.OfType())
}

type scalarUnionConfigTypeResolver struct {
	commonResolver
	t *configtypes.ScalarUnionConfigType
}

func (r *scalarUnionConfigTypeResolver) ScalarType() (*configTypeResolver, error) {
	return resolved(r.t.ScalarType())
}

func (r *scalarUnionConfigTypeResolver) NonScalarType() (*configTypeResolver, error) {
	return resolved(r.t.NonScalarType())
}

func (r *scalarUnionConfigTypeResolver) ScalarTypeKey() string {
	return r.t.ScalarTypeKey()
}

func (r *scalarUnionConfigTypeResolver) NonScalarTypeKey() string {
	return r.t.NonScalarTypeKey()
}

type configTypeFieldResolver struct {
	f configtypes.ConfigTypeField
}

func (r *configTypeFieldResolver) Name() string {
	return r.f.Name()
}

func (r *configTypeFieldResolver) Description() *string {
	return optionalString(r.f.Description())
}

func (r *configTypeFieldResolver) ConfigType() (*configTypeResolver, error) {
	return resolved(r.f.ConfigType())
}

func (r *configTypeFieldResolver) ConfigTypeKey() string {
	return r.f.ConfigTypeKey()
}

func (r *configTypeFieldResolver) DefaultValue() *string {
	value, ok := r.f.DefaultValue()
	if !ok {
		return nil
	}
	return &value
}

func (r *configTypeFieldResolver) IsOptional() bool {
	return r.f.IsOptional()
}

type enumConfigValueResolver struct {
	v configtypes.EnumConfigValue
}

func (r *enumConfigValueResolver) Value() string {
	return r.v.Value
}

func (r *enumConfigValueResolver) Description() *string {
	return optionalString(r.v.Description)
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
