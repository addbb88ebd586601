package snapshot

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	configtypes "github.com/goliatone/go-configtypes"
)

func TestNewMemoryIndexesAndClones(t *testing.T) {
	fields := []configtypes.FieldMeta{{Name: "a", TypeKey: "Int"}}
	mem, err := NewMemory("v1",
		configtypes.TypeMeta{Key: "Int", Kind: configtypes.KindScalar},
		configtypes.TypeMeta{Key: "Shape", Kind: configtypes.KindStrictShape, Fields: fields},
	)
	if err != nil {
		t.Fatalf("new memory: %v", err)
	}
	fields[0].Name = "mutated"

	meta, err := mem.ConfigMeta("Shape")
	if err != nil {
		t.Fatalf("config meta: %v", err)
	}
	if meta.Fields[0].Name != "a" {
		t.Fatalf("expected stored metadata isolated from input, got %q", meta.Fields[0].Name)
	}
	meta.Fields[0].Name = "changed"
	again, _ := mem.ConfigMeta("Shape")
	if again.Fields[0].Name != "a" {
		t.Fatalf("expected lookups to return copies, got %q", again.Fields[0].Name)
	}

	if got := mem.Keys(); !reflect.DeepEqual([]string{"Int", "Shape"}, got) {
		t.Fatalf("unexpected keys %v", got)
	}
	if mem.Len() != 2 || mem.SnapshotID() != "v1" {
		t.Fatalf("unexpected len/id: %d %q", mem.Len(), mem.SnapshotID())
	}
}

func TestNewMemoryRejectsBadKeys(t *testing.T) {
	if _, err := NewMemory("", configtypes.TypeMeta{Kind: configtypes.KindAny}); err == nil || !strings.Contains(err.Error(), "empty key") {
		t.Fatalf("expected empty key error, got %v", err)
	}
	_, err := NewMemory("",
		configtypes.TypeMeta{Key: "Int", Kind: configtypes.KindScalar},
		configtypes.TypeMeta{Key: "Int", Kind: configtypes.KindScalar},
	)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestMemoryUnknownKey(t *testing.T) {
	mem := MustMemory("v1")
	if _, err := mem.ConfigMeta("Missing"); !errors.Is(err, configtypes.ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}

	var nilMem *Memory
	if _, err := nilMem.ConfigMeta("Missing"); !errors.Is(err, configtypes.ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey from nil memory, got %v", err)
	}
	if nilMem.Keys() != nil || nilMem.Len() != 0 || nilMem.SnapshotID() != "" {
		t.Fatalf("expected zero values from nil memory")
	}
}

func TestMemoryResolvesThroughConfigtypes(t *testing.T) {
	mem := MustMemory("v1",
		configtypes.TypeMeta{Key: "Int", Kind: configtypes.KindScalar, GivenName: "Int"},
		configtypes.TypeMeta{Key: "List.Int", Kind: configtypes.KindArray, InnerTypeKey: "Int"},
	)
	typ, err := configtypes.Resolve(mem, "List.Int")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	array, ok := typ.(*configtypes.ArrayConfigType)
	if !ok {
		t.Fatalf("expected array descriptor, got %T", typ)
	}
	if array.OfTypeKey() != "Int" {
		t.Fatalf("unexpected inner key %q", array.OfTypeKey())
	}
}

func TestMemoryCacheScopeIsPerInstance(t *testing.T) {
	meta := configtypes.TypeMeta{Key: "Int", Kind: configtypes.KindScalar}
	first := MustMemory("storage", meta)
	second := MustMemory("storage", meta)

	if first.CacheScope() == "" || first.CacheScope() == second.CacheScope() {
		t.Fatalf("expected distinct non-empty scopes, got %q and %q", first.CacheScope(), second.CacheScope())
	}
	if MustMemory("", meta).CacheScope() != "" {
		t.Fatalf("expected empty scope for a snapshot without id")
	}
	var nilMem *Memory
	if nilMem.CacheScope() != "" {
		t.Fatalf("expected empty scope from nil memory")
	}
}
