package configtypes

// ClosureCache stores descendant key sets keyed by snapshot scope and type
// key. The scope is CacheScope for a ScopedSnapshot and SnapshotID otherwise.
// Implementations must be safe for concurrent use. Entries for one scope must
// never be served for another.
type ClosureCache interface {
	Get(scope, key string) ([]string, bool)
	Set(scope, key string, keys []string)
}

// WithClosureCache registers a cross-query closure cache on the Resolver.
// The cache is consulted only for snapshots implementing VersionedSnapshot
// with a non-empty id.
func WithClosureCache(cache ClosureCache) Option {
	return func(cfg *resolverConfig) {
		cfg.cache = cache
	}
}
