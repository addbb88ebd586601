package configtypes

import (
	"sync"
	"time"
)

// Option configures a Resolver.
type Option func(*resolverConfig)

type resolverConfig struct {
	logger ResolveLogger
	cache  ClosureCache
}

func applyOptions(opts []Option) resolverConfig {
	cfg := resolverConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = noopResolveLogger{}
	}
	return cfg
}

// Resolver holds process-level resolution settings. It carries no snapshot of
// its own; each query opens a Session bound to exactly one snapshot. A Resolver
// is safe for concurrent use.
type Resolver struct {
	cfg resolverConfig
}

// NewResolver constructs a Resolver.
func NewResolver(opts ...Option) *Resolver {
	return &Resolver{cfg: applyOptions(opts)}
}

// Session binds snapshot for the lifetime of one query. Every descriptor
// reached from the session reads that snapshot only, so swapping the active
// snapshot elsewhere is never observed mid-traversal.
func (r *Resolver) Session(snapshot Snapshot) *Session {
	if r == nil {
		r = NewResolver()
	}
	return &Session{
		resolver:   r,
		snapshot:   snapshot,
		snapshotID: snapshotID(snapshot),
		cacheScope: cacheScope(snapshot),
		closures:   map[string][]string{},
	}
}

// Resolve resolves key against snapshot using a default Resolver.
func Resolve(snapshot Snapshot, key string) (ConfigType, error) {
	return NewResolver().Session(snapshot).Resolve(key)
}

// Session is a per-query resolution scope. It memoizes descendant closures by
// root key so repeated recursiveConfigTypes lookups within one query walk the
// snapshot once. Sessions are safe for concurrent field resolution.
type Session struct {
	resolver   *Resolver
	snapshot   Snapshot
	snapshotID string
	cacheScope string

	mu       sync.Mutex
	closures map[string][]string
}

// Snapshot returns the snapshot the session is bound to.
func (s *Session) Snapshot() Snapshot {
	return s.snapshot
}

// Resolve builds the descriptor for key. An absent key fails with an error
// wrapping ErrUnknownKey; a kind outside the closed set fails with
// ErrUnreachableKind. No partially populated descriptor is ever returned.
func (s *Session) Resolve(key string) (ConfigType, error) {
	if s.snapshot == nil {
		return nil, wrapResolutionError(key, "", ErrNilSnapshot)
	}

	start := time.Now()
	meta, err := s.snapshot.ConfigMeta(key)
	if err != nil {
		err = wrapResolutionError(key, "", err)
		s.log(key, "", start, err)
		return nil, err
	}

	resolved, err := s.newDescriptor(meta)
	if err != nil {
		err = wrapResolutionError(key, meta.Kind, err)
	}
	s.log(key, meta.Kind, start, err)
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

func (s *Session) newDescriptor(meta TypeMeta) (ConfigType, error) {
	base := descriptor{session: s, meta: meta}
	switch {
	case meta.Kind == KindEnum:
		return &EnumConfigType{descriptor: base}, nil
	case meta.Kind.HasFields():
		return &CompositeConfigType{descriptor: base}, nil
	case meta.Kind == KindArray:
		return &ArrayConfigType{descriptor: base}, nil
	case meta.Kind == KindNoneable:
		return &NullableConfigType{descriptor: base}, nil
	case meta.Kind == KindAny, meta.Kind == KindScalar:
		return &RegularConfigType{descriptor: base}, nil
	case meta.Kind == KindScalarUnion:
		return &ScalarUnionConfigType{descriptor: base}, nil
	default:
		return nil, ErrUnreachableKind
	}
}

func (s *Session) log(key string, kind Kind, start time.Time, err error) {
	s.resolver.cfg.logger.LogResolution(ResolveLogEvent{
		Key:        key,
		Kind:       kind,
		SnapshotID: s.snapshotID,
		Duration:   time.Since(start),
		Err:        err,
	})
}
