package gql

import (
	"context"
	"errors"
	"sync"

	configtypes "github.com/goliatone/go-configtypes"
)

// ErrNoSnapshot is returned when a query runs without a bound snapshot.
var ErrNoSnapshot = errors.New("gql: no snapshot bound to request")

type bindingKey struct{}

type binding struct {
	snapshot configtypes.Snapshot

	once    sync.Once
	session *configtypes.Session
}

// WithSnapshot binds snap to every resolution under ctx. All root fields of
// one request share a single session, so they read the same snapshot.
func WithSnapshot(ctx context.Context, snap configtypes.Snapshot) context.Context {
	return context.WithValue(ctx, bindingKey{}, &binding{snapshot: snap})
}

// SnapshotFrom returns the snapshot bound to ctx, if any.
func SnapshotFrom(ctx context.Context) (configtypes.Snapshot, bool) {
	b, ok := ctx.Value(bindingKey{}).(*binding)
	if !ok || b.snapshot == nil {
		return nil, false
	}
	return b.snapshot, true
}

func sessionFrom(ctx context.Context, resolver *configtypes.Resolver) (*configtypes.Session, error) {
	b, ok := ctx.Value(bindingKey{}).(*binding)
	if !ok || b.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	b.once.Do(func() {
		b.session = resolver.Session(b.snapshot)
	})
	return b.session, nil
}
