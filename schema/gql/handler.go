package gql

import (
	"net/http"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"go.uber.org/zap"

	"github.com/goliatone/go-configtypes/pkg/snapshot"
)

// Handler serves schema over HTTP. The holder's current snapshot is captured
// once per request, so a concurrent swap never changes a query mid-flight.
func Handler(schema *graphql.Schema, holder *snapshot.Holder, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	next := &relay.Handler{Schema: schema}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := holder.Current()
		if snap == nil {
			http.Error(w, "no schema snapshot loaded", http.StatusServiceUnavailable)
			return
		}
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(WithSnapshot(r.Context(), snap)))
		logger.Debug("graphql request",
			zap.String("snapshot_id", snap.SnapshotID()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
