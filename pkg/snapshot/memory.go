package snapshot

import (
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"

	configtypes "github.com/goliatone/go-configtypes"
)

// Memory is an immutable, key-indexed snapshot. Lookups return copies, so
// callers can never alter the stored metadata.
type Memory struct {
	id         string
	generation uint64
	types      map[string]configtypes.TypeMeta
}

var generations atomic.Uint64

// NewMemory indexes metas by key. It rejects empty and duplicate keys; it does
// not check that references resolve, which is the schema builder's job.
func NewMemory(id string, metas ...configtypes.TypeMeta) (*Memory, error) {
	types := make(map[string]configtypes.TypeMeta, len(metas))
	for i, meta := range metas {
		if meta.Key == "" {
			return nil, fmt.Errorf("snapshot: type at index %d has an empty key", i)
		}
		if _, exists := types[meta.Key]; exists {
			return nil, fmt.Errorf("snapshot: duplicate type key %q", meta.Key)
		}
		types[meta.Key] = cloneTypeMeta(meta)
	}
	return &Memory{id: id, generation: generations.Add(1), types: types}, nil
}

// MustMemory is NewMemory for fixtures; it panics on error.
func MustMemory(id string, metas ...configtypes.TypeMeta) *Memory {
	mem, err := NewMemory(id, metas...)
	if err != nil {
		panic(err)
	}
	return mem
}

// ConfigMeta implements configtypes.Snapshot.
func (m *Memory) ConfigMeta(key string) (configtypes.TypeMeta, error) {
	if m == nil {
		return configtypes.TypeMeta{}, configtypes.UnknownKeyError(key)
	}
	meta, ok := m.types[key]
	if !ok {
		return configtypes.TypeMeta{}, configtypes.UnknownKeyError(key)
	}
	return cloneTypeMeta(meta), nil
}

// SnapshotID implements configtypes.VersionedSnapshot.
func (m *Memory) SnapshotID() string {
	if m == nil {
		return ""
	}
	return m.id
}

// CacheScope implements configtypes.ScopedSnapshot. Every Memory gets its own
// generation, so two snapshots decoded from one id never share cache entries.
// It is empty when the snapshot has no id.
func (m *Memory) CacheScope() string {
	if m == nil || m.id == "" {
		return ""
	}
	return m.id + "#" + strconv.FormatUint(m.generation, 10)
}

// Keys returns every type key, sorted.
func (m *Memory) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.types))
	for key := range m.types {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of types in the snapshot.
func (m *Memory) Len() int {
	if m == nil {
		return 0
	}
	return len(m.types)
}

func cloneTypeMeta(meta configtypes.TypeMeta) configtypes.TypeMeta {
	out := meta
	if meta.TypeParamKeys != nil {
		out.TypeParamKeys = append([]string(nil), meta.TypeParamKeys...)
	}
	if meta.EnumValues != nil {
		out.EnumValues = append([]configtypes.EnumValueMeta(nil), meta.EnumValues...)
	}
	if meta.Fields != nil {
		out.Fields = append([]configtypes.FieldMeta(nil), meta.Fields...)
	}
	return out
}

var _ configtypes.ScopedSnapshot = (*Memory)(nil)
