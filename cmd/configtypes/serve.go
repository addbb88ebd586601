package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-configtypes/pkg/activity"
	"github.com/goliatone/go-configtypes/pkg/snapshot"
	"github.com/goliatone/go-configtypes/schema/gql"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the snapshot over GraphQL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address (default :8080)",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "reload the snapshot file when it changes",
			},
		},
		Action: withRuntime(func(ctx context.Context, _ *cli.Command, rt *runtime) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			listener, err := net.Listen("tcp", rt.cfg.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", rt.cfg.Addr, err)
			}
			srv, err := rt.newServer(ctx)
			if err != nil {
				_ = listener.Close()
				return err
			}
			return srv.run(ctx, listener)
		}),
	}
}

type server struct {
	rt     *runtime
	holder *snapshot.Holder
	http   *http.Server
}

// newServer loads the snapshot and builds the HTTP handler tree.
func (rt *runtime) newServer(ctx context.Context) (*server, error) {
	if rt.cfg.SnapshotPath == "" {
		return nil, ErrNoSnapshotPath
	}

	emitter := activity.NewEmitter(activity.Hooks{logHook(rt.logger)}, rt.cfg.Activity)
	holderOpts := []snapshot.HolderOption{snapshot.WithEmitter(emitter)}
	if rt.cache != nil {
		cache := rt.cache
		holderOpts = append(holderOpts, snapshot.WithSwapListener(func(_, _ *snapshot.Memory) {
			cache.Purge()
		}))
	}
	holder := snapshot.NewHolder(holderOpts...)
	meta, err := holder.LoadFile(ctx, rt.cfg.SnapshotPath)
	if err != nil {
		return nil, err
	}
	rt.logger.Info("snapshot loaded",
		zap.String("path", rt.cfg.SnapshotPath),
		zap.String("snapshot_id", meta.SnapshotID),
		zap.Int("types", holder.Current().Len()),
	)

	schema, err := gql.NewSchema(
		gql.WithResolver(rt.resolver),
		gql.WithLogger(rt.logger),
		gql.WithMaxDepth(rt.cfg.MaxDepth),
		gql.WithMaxParallelism(rt.cfg.MaxParallelism),
	)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", gql.Handler(schema, holder, rt.logger))
	mux.HandleFunc("/healthz", healthHandler(holder))

	return &server{
		rt:     rt,
		holder: holder,
		http: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// run serves on listener until ctx is done, then shuts down gracefully.
func (s *server) run(ctx context.Context, listener net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.rt.logger.Info("serving graphql", zap.String("addr", listener.Addr().String()))
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.rt.cfg.ShutdownTimeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})

	if s.rt.cfg.Watch {
		watcher := snapshot.NewWatcher(s.rt.cfg.SnapshotPath, s.holder, snapshot.WithWatchLogger(s.rt.logger))
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	return g.Wait()
}

func healthHandler(holder *snapshot.Holder) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if holder.Current() == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "unavailable"})
			return
		}
		meta := holder.Meta()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":      "ok",
			"snapshot_id": meta.SnapshotID,
			"etag":        meta.ETag,
			"updated_at":  meta.UpdatedAt,
			"types":       holder.Current().Len(),
		})
	}
}

// logHook records snapshot lifecycle events in the process log.
func logHook(logger *zap.Logger) activity.ActivityHook {
	return activity.HookFunc(func(_ context.Context, event activity.Event) error {
		fields := []zap.Field{
			zap.String("verb", event.Verb),
			zap.String("object_id", event.ObjectID),
			zap.String("channel", event.Channel),
		}
		for key, value := range event.Metadata {
			fields = append(fields, zap.Any(key, value))
		}
		logger.Info("snapshot activity", fields...)
		return nil
	})
}
