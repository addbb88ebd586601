package configtypes

import "sort"

// RecursiveTypeKeys collects every type key transitively reachable from meta
// through inner, field and scalar-union references. The walk keeps a visited
// set, so cyclic schemas terminate and each key appears once. meta's own key is
// included only when a cycle leads back to it. Keys are returned sorted.
func RecursiveTypeKeys(snapshot Snapshot, meta TypeMeta) ([]string, error) {
	if snapshot == nil {
		return nil, wrapResolutionError(meta.Key, meta.Kind, ErrNilSnapshot)
	}

	visited := map[string]struct{}{}
	pending := append([]string(nil), meta.ChildTypeKeys()...)
	for len(pending) > 0 {
		last := len(pending) - 1
		key := pending[last]
		pending = pending[:last]

		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}

		child, err := snapshot.ConfigMeta(key)
		if err != nil {
			return nil, wrapResolutionError(key, "", err)
		}
		pending = append(pending, child.ChildTypeKeys()...)
	}

	keys := make([]string, 0, len(visited))
	for key := range visited {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Session) recursiveTypeKeys(meta TypeMeta) ([]string, error) {
	s.mu.Lock()
	memo, ok := s.closures[meta.Key]
	s.mu.Unlock()
	if ok {
		return append([]string(nil), memo...), nil
	}

	cache := s.resolver.cfg.cache
	useCache := cache != nil && s.cacheScope != ""
	if useCache {
		if cached, ok := cache.Get(s.cacheScope, meta.Key); ok {
			s.remember(meta.Key, cached)
			return append([]string(nil), cached...), nil
		}
	}

	keys, err := RecursiveTypeKeys(s.snapshot, meta)
	if err != nil {
		return nil, err
	}
	s.remember(meta.Key, keys)
	if useCache {
		cache.Set(s.cacheScope, meta.Key, append([]string(nil), keys...))
	}
	return append([]string(nil), keys...), nil
}

func (s *Session) remember(key string, keys []string) {
	s.mu.Lock()
	s.closures[key] = append([]string(nil), keys...)
	s.mu.Unlock()
}
