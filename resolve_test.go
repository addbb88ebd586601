package configtypes

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type mapSnapshot struct {
	id    string
	types map[string]TypeMeta

	mu    sync.Mutex
	reads map[string]int
}

func newMapSnapshot(id string, metas ...TypeMeta) *mapSnapshot {
	snap := &mapSnapshot{id: id, types: map[string]TypeMeta{}, reads: map[string]int{}}
	for _, meta := range metas {
		snap.types[meta.Key] = meta
	}
	return snap
}

func (s *mapSnapshot) ConfigMeta(key string) (TypeMeta, error) {
	s.mu.Lock()
	s.reads[key]++
	s.mu.Unlock()
	meta, ok := s.types[key]
	if !ok {
		return TypeMeta{}, UnknownKeyError(key)
	}
	return meta, nil
}

func (s *mapSnapshot) SnapshotID() string {
	return s.id
}

func (s *mapSnapshot) readCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[key]
}

func fixtureSnapshot() *mapSnapshot {
	return newMapSnapshot("example",
		TypeMeta{Key: "String", Kind: KindScalar, GivenName: "String"},
		TypeMeta{Key: "Int", Kind: KindScalar, GivenName: "Int"},
		TypeMeta{Key: "Any", Kind: KindAny, GivenName: "Any"},
		TypeMeta{Key: "List.String", Kind: KindArray, InnerTypeKey: "String", TypeParamKeys: []string{"String"}},
		TypeMeta{Key: "Noneable.Int", Kind: KindNoneable, InnerTypeKey: "Int", TypeParamKeys: []string{"Int"}},
		TypeMeta{
			Key:         "Config",
			Kind:        KindStrictShape,
			Description: "top level config",
			Fields: []FieldMeta{
				{Name: "b", TypeKey: "String", IsRequired: true},
				{Name: "a", TypeKey: "List.String", DefaultProvided: true, DefaultValueAsStr: `["x"]`},
			},
		},
		TypeMeta{
			Key:  "Selector.Storage",
			Kind: KindSelector,
			Fields: []FieldMeta{
				{Name: "s3", TypeKey: "Config"},
				{Name: "filesystem", TypeKey: "Noneable.Int"},
			},
		},
		TypeMeta{
			Key:  "Level",
			Kind: KindEnum,
			EnumValues: []EnumValueMeta{
				{Value: "DEBUG", Description: "verbose"},
				{Value: "INFO"},
				{Value: "ERROR", Description: "failures only"},
			},
			GivenName: "Level",
		},
		TypeMeta{
			Key:              "ScalarUnion.Int-Config",
			Kind:             KindScalarUnion,
			ScalarTypeKey:    "Int",
			NonScalarTypeKey: "Config",
			TypeParamKeys:    []string{"Int", "Config"},
		},
	)
}

func TestResolveReturnsRequestedKey(t *testing.T) {
	snap := fixtureSnapshot()
	for key := range snap.types {
		resolved, err := Resolve(snap, key)
		if err != nil {
			t.Fatalf("resolve %q: %v", key, err)
		}
		if resolved.Key() != key {
			t.Fatalf("expected key %q, got %q", key, resolved.Key())
		}
	}
}

func TestResolveDispatchesVariantByKind(t *testing.T) {
	snap := fixtureSnapshot()
	cases := map[string]string{
		"String":                 "*configtypes.RegularConfigType",
		"Any":                    "*configtypes.RegularConfigType",
		"List.String":            "*configtypes.ArrayConfigType",
		"Noneable.Int":           "*configtypes.NullableConfigType",
		"Config":                 "*configtypes.CompositeConfigType",
		"Selector.Storage":       "*configtypes.CompositeConfigType",
		"Level":                  "*configtypes.EnumConfigType",
		"ScalarUnion.Int-Config": "*configtypes.ScalarUnionConfigType",
	}
	for key, want := range cases {
		resolved, err := Resolve(snap, key)
		if err != nil {
			t.Fatalf("resolve %q: %v", key, err)
		}
		if got := fmt.Sprintf("%T", resolved); got != want {
			t.Fatalf("key %q: expected %s, got %s", key, want, got)
		}
	}
}

func TestCommonFields(t *testing.T) {
	snap := fixtureSnapshot()

	config, err := Resolve(snap, "Config")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if config.Description() != "top level config" {
		t.Fatalf("unexpected description %q", config.Description())
	}
	if config.IsSelector() {
		t.Fatalf("strict shape must not report selector")
	}
	if keys := config.TypeParamKeys(); keys == nil || len(keys) != 0 {
		t.Fatalf("expected empty, non-nil type param keys, got %#v", keys)
	}

	selector, err := Resolve(snap, "Selector.Storage")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !selector.IsSelector() {
		t.Fatalf("expected selector flag")
	}

	union, err := Resolve(snap, "ScalarUnion.Int-Config")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff([]string{"Int", "Config"}, union.TypeParamKeys()); diff != "" {
		t.Fatalf("type param keys mismatch (-want +got):\n%s", diff)
	}
	union.TypeParamKeys()[0] = "mutated"
	if union.TypeParamKeys()[0] != "Int" {
		t.Fatalf("type param keys must not alias snapshot data")
	}
}

func TestCompositeFieldsSortedByName(t *testing.T) {
	declared := [][]string{
		{"b", "a", "c"},
		{"c", "b", "a"},
		{"a", "c", "b"},
	}
	for _, order := range declared {
		fields := make([]FieldMeta, 0, len(order))
		for _, name := range order {
			fields = append(fields, FieldMeta{Name: name, TypeKey: "String"})
		}
		snap := newMapSnapshot("",
			TypeMeta{Key: "String", Kind: KindScalar, GivenName: "String"},
			TypeMeta{Key: "Shape", Kind: KindPermissiveShape, Fields: fields},
		)
		resolved, err := Resolve(snap, "Shape")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		composite, ok := resolved.(*CompositeConfigType)
		if !ok {
			t.Fatalf("expected composite, got %T", resolved)
		}
		var names []string
		for _, field := range composite.Fields() {
			names = append(names, field.Name())
		}
		if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
			t.Fatalf("declared %v: field order mismatch (-want +got):\n%s", order, diff)
		}
	}
}

func TestCompositeFieldAccessors(t *testing.T) {
	resolved, err := Resolve(fixtureSnapshot(), "Config")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	composite := resolved.(*CompositeConfigType)

	a, ok := composite.Field("a")
	if !ok {
		t.Fatalf("expected field a")
	}
	if !a.IsOptional() {
		t.Fatalf("field a is not required and should be optional")
	}
	if def, ok := a.DefaultValue(); !ok || def != `["x"]` {
		t.Fatalf("unexpected default %q (provided=%t)", def, ok)
	}
	if a.ConfigTypeKey() != "List.String" {
		t.Fatalf("unexpected type key %q", a.ConfigTypeKey())
	}
	fieldType, err := a.ConfigType()
	if err != nil {
		t.Fatalf("field type: %v", err)
	}
	if fieldType.Key() != "List.String" {
		t.Fatalf("expected List.String, got %q", fieldType.Key())
	}

	b, _ := composite.Field("b")
	if b.IsOptional() {
		t.Fatalf("field b is required")
	}
	if _, ok := b.DefaultValue(); ok {
		t.Fatalf("field b has no default")
	}
	if _, ok := composite.Field("missing"); ok {
		t.Fatalf("unexpected field lookup hit")
	}
}

func TestWrappingOfType(t *testing.T) {
	snap := fixtureSnapshot()
	for key, inner := range map[string]string{"List.String": "String", "Noneable.Int": "Int"} {
		resolved, err := Resolve(snap, key)
		if err != nil {
			t.Fatalf("resolve %q: %v", key, err)
		}
		wrapping, ok := resolved.(WrappingConfigType)
		if !ok {
			t.Fatalf("expected wrapping type for %q, got %T", key, resolved)
		}
		ofType, err := wrapping.OfType()
		if err != nil {
			t.Fatalf("of type: %v", err)
		}
		if ofType.Key() != inner || wrapping.OfTypeKey() != inner {
			t.Fatalf("key %q: expected inner %q, got %q", key, inner, ofType.Key())
		}
	}
}

func TestScalarUnionResolvesBothSides(t *testing.T) {
	resolved, err := Resolve(fixtureSnapshot(), "ScalarUnion.Int-Config")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	union := resolved.(*ScalarUnionConfigType)

	scalar, err := union.ScalarType()
	if err != nil {
		t.Fatalf("scalar type: %v", err)
	}
	nonScalar, err := union.NonScalarType()
	if err != nil {
		t.Fatalf("non scalar type: %v", err)
	}
	if scalar.Key() != union.ScalarTypeKey() || scalar.Key() != "Int" {
		t.Fatalf("unexpected scalar side %q", scalar.Key())
	}
	if nonScalar.Key() != union.NonScalarTypeKey() || nonScalar.Key() != "Config" {
		t.Fatalf("unexpected non scalar side %q", nonScalar.Key())
	}
}

func TestEnumValuesKeepDeclarationOrder(t *testing.T) {
	resolved, err := Resolve(fixtureSnapshot(), "Level")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	enum := resolved.(*EnumConfigType)
	want := []EnumConfigValue{
		{Value: "DEBUG", Description: "verbose"},
		{Value: "INFO"},
		{Value: "ERROR", Description: "failures only"},
	}
	if diff := cmp.Diff(want, enum.Values()); diff != "" {
		t.Fatalf("enum values mismatch (-want +got):\n%s", diff)
	}
	if enum.GivenName() != "Level" {
		t.Fatalf("unexpected given name %q", enum.GivenName())
	}
}

func TestRecursiveConfigTypesReachable(t *testing.T) {
	resolved, err := Resolve(fixtureSnapshot(), "Config")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	nested, err := resolved.RecursiveConfigTypes()
	if err != nil {
		t.Fatalf("recursive: %v", err)
	}
	if diff := cmp.Diff([]string{"List.String", "String"}, descriptorKeys(nested)); diff != "" {
		t.Fatalf("recursive keys mismatch (-want +got):\n%s", diff)
	}
}

func TestRecursiveConfigTypesDeepNesting(t *testing.T) {
	resolved, err := Resolve(fixtureSnapshot(), "Selector.Storage")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	nested, err := resolved.RecursiveConfigTypes()
	if err != nil {
		t.Fatalf("recursive: %v", err)
	}
	want := []string{"Config", "Int", "List.String", "Noneable.Int", "String"}
	if diff := cmp.Diff(want, descriptorKeys(nested)); diff != "" {
		t.Fatalf("recursive keys mismatch (-want +got):\n%s", diff)
	}
}

func TestRecursiveConfigTypesSelfReference(t *testing.T) {
	snap := newMapSnapshot("",
		TypeMeta{Key: "A", Kind: KindStrictShape, Fields: []FieldMeta{{Name: "self", TypeKey: "A"}}},
	)
	resolved, err := Resolve(snap, "A")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	nested, err := resolved.RecursiveConfigTypes()
	if err != nil {
		t.Fatalf("recursive: %v", err)
	}
	if diff := cmp.Diff([]string{"A"}, descriptorKeys(nested)); diff != "" {
		t.Fatalf("recursive keys mismatch (-want +got):\n%s", diff)
	}
}

func TestRecursiveConfigTypesMutualCycle(t *testing.T) {
	snap := newMapSnapshot("",
		TypeMeta{Key: "String", Kind: KindScalar, GivenName: "String"},
		TypeMeta{Key: "Node", Kind: KindStrictShape, Fields: []FieldMeta{
			{Name: "children", TypeKey: "List.Node"},
			{Name: "name", TypeKey: "String"},
		}},
		TypeMeta{Key: "List.Node", Kind: KindArray, InnerTypeKey: "Node"},
	)
	resolved, err := Resolve(snap, "List.Node")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	nested, err := resolved.RecursiveConfigTypes()
	if err != nil {
		t.Fatalf("recursive: %v", err)
	}
	if diff := cmp.Diff([]string{"List.Node", "Node", "String"}, descriptorKeys(nested)); diff != "" {
		t.Fatalf("recursive keys mismatch (-want +got):\n%s", diff)
	}
}

func TestRecursiveConfigTypesLeafIsEmpty(t *testing.T) {
	snap := fixtureSnapshot()
	for _, key := range []string{"String", "Any", "Level"} {
		resolved, err := Resolve(snap, key)
		if err != nil {
			t.Fatalf("resolve %q: %v", key, err)
		}
		nested, err := resolved.RecursiveConfigTypes()
		if err != nil {
			t.Fatalf("recursive %q: %v", key, err)
		}
		if len(nested) != 0 {
			t.Fatalf("expected no nested types for %q, got %v", key, descriptorKeys(nested))
		}
	}
}

func TestResolveUnknownKey(t *testing.T) {
	resolved, err := Resolve(fixtureSnapshot(), "Missing")
	if err == nil {
		t.Fatalf("expected error for missing key")
	}
	if resolved != nil {
		t.Fatalf("expected nil descriptor, got %T", resolved)
	}
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	var resErr *ResolutionError
	if !errors.As(err, &resErr) || resErr.Key != "Missing" {
		t.Fatalf("expected ResolutionError for key Missing, got %v", err)
	}
}

func TestRecursiveConfigTypesSurfacesDanglingReference(t *testing.T) {
	snap := newMapSnapshot("",
		TypeMeta{Key: "Shape", Kind: KindStrictShape, Fields: []FieldMeta{{Name: "x", TypeKey: "Gone"}}},
	)
	resolved, err := Resolve(snap, "Shape")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	nested, err := resolved.RecursiveConfigTypes()
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if nested != nil {
		t.Fatalf("expected no partial result, got %v", descriptorKeys(nested))
	}
}

func TestResolveUnreachableKind(t *testing.T) {
	snap := newMapSnapshot("", TypeMeta{Key: "Odd", Kind: Kind("MAP")})
	resolved, err := Resolve(snap, "Odd")
	if !errors.Is(err, ErrUnreachableKind) {
		t.Fatalf("expected ErrUnreachableKind, got %v", err)
	}
	if resolved != nil {
		t.Fatalf("expected nil descriptor, got %T", resolved)
	}
	var resErr *ResolutionError
	if !errors.As(err, &resErr) || resErr.Kind != Kind("MAP") {
		t.Fatalf("expected kind recorded on error, got %v", err)
	}
}

func TestSessionWithoutSnapshot(t *testing.T) {
	_, err := NewResolver().Session(nil).Resolve("String")
	if !errors.Is(err, ErrNilSnapshot) {
		t.Fatalf("expected ErrNilSnapshot, got %v", err)
	}
}

func TestSessionMemoizesClosures(t *testing.T) {
	snap := fixtureSnapshot()
	session := NewResolver().Session(snap)

	resolved, err := session.Resolve("Selector.Storage")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	first, err := resolved.RecursiveConfigTypes()
	if err != nil {
		t.Fatalf("recursive: %v", err)
	}
	readsAfterFirst := snap.readCount("List.String")

	second, err := resolved.RecursiveConfigTypes()
	if err != nil {
		t.Fatalf("recursive: %v", err)
	}
	if diff := cmp.Diff(descriptorKeys(first), descriptorKeys(second)); diff != "" {
		t.Fatalf("memoized closure differs (-first +second):\n%s", diff)
	}
	// The second call resolves each descendant again but skips the walk.
	if got := snap.readCount("List.String"); got != readsAfterFirst+1 {
		t.Fatalf("expected one extra read for List.String, got %d -> %d", readsAfterFirst, got)
	}
}

type fakeClosureCache struct {
	mu      sync.Mutex
	entries map[string][]string
	gets    int
	sets    int
}

func (c *fakeClosureCache) Get(snapshotID, key string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	keys, ok := c.entries[snapshotID+"|"+key]
	return keys, ok
}

func (c *fakeClosureCache) Set(snapshotID, key string, keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[string][]string{}
	}
	c.sets++
	c.entries[snapshotID+"|"+key] = keys
}

func TestClosureCacheKeyedBySnapshotID(t *testing.T) {
	cache := &fakeClosureCache{}
	resolver := NewResolver(WithClosureCache(cache))

	first := fixtureSnapshot()
	resolved, err := resolver.Session(first).Resolve("Config")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := resolved.RecursiveConfigTypes(); err != nil {
		t.Fatalf("recursive: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected one cache write, got %d", cache.sets)
	}
	if _, ok := cache.entries["example|Config"]; !ok {
		t.Fatalf("expected entry keyed by snapshot id, got %v", cache.entries)
	}

	// A fresh session on the same snapshot id hits the cache.
	resolved, _ = resolver.Session(first).Resolve("Config")
	nested, err := resolved.RecursiveConfigTypes()
	if err != nil {
		t.Fatalf("recursive: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache hit, got %d writes", cache.sets)
	}
	if diff := cmp.Diff([]string{"List.String", "String"}, descriptorKeys(nested)); diff != "" {
		t.Fatalf("cached keys mismatch (-want +got):\n%s", diff)
	}

	unversioned := newMapSnapshot("", first.typesSlice()...)
	resolved, _ = resolver.Session(unversioned).Resolve("Config")
	if _, err := resolved.RecursiveConfigTypes(); err != nil {
		t.Fatalf("recursive: %v", err)
	}
	if cache.sets != 1 || cache.gets != 2 {
		t.Fatalf("expected cache bypass without snapshot id, got gets=%d sets=%d", cache.gets, cache.sets)
	}
}

func TestResolveLoggerReceivesEvents(t *testing.T) {
	var events []ResolveLogEvent
	var mu sync.Mutex
	logger := ResolveLoggerFunc(func(event ResolveLogEvent) {
		mu.Lock()
		events = append(events, event)
		mu.Unlock()
	})
	session := NewResolver(WithResolveLogger(logger)).Session(fixtureSnapshot())

	if _, err := session.Resolve("Config"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := session.Resolve("Missing"); err == nil {
		t.Fatalf("expected error")
	}

	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
	if events[0].Key != "Config" || events[0].Kind != KindStrictShape || events[0].Err != nil {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	if events[0].SnapshotID != "example" {
		t.Fatalf("expected snapshot id on event, got %q", events[0].SnapshotID)
	}
	if events[1].Key != "Missing" || !errors.Is(events[1].Err, ErrUnknownKey) {
		t.Fatalf("unexpected second event %+v", events[1])
	}
}

func (s *mapSnapshot) typesSlice() []TypeMeta {
	out := make([]TypeMeta, 0, len(s.types))
	for _, meta := range s.types {
		out = append(out, meta)
	}
	return out
}

func descriptorKeys(types []ConfigType) []string {
	if types == nil {
		return nil
	}
	keys := make([]string, 0, len(types))
	for _, typ := range types {
		keys = append(keys, typ.Key())
	}
	return keys
}
