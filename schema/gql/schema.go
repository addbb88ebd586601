// Package gql serves the config type graph over GraphQL.
package gql

import (
	"context"
	_ "embed"
	"fmt"

	configtypes "github.com/goliatone/go-configtypes"
	graphql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"
)

//go:embed schema.graphql
var schemaSDL string

// SDL returns the GraphQL schema definition served by NewSchema.
func SDL() string {
	return schemaSDL
}

const (
	DefaultMaxDepth       = 32
	DefaultMaxParallelism = 10
)

// Option configures NewSchema.
type Option func(*options)

type options struct {
	resolver       *configtypes.Resolver
	logger         *zap.Logger
	maxDepth       int
	maxParallelism int
}

// WithResolver sets the descriptor resolver. Its logger and closure cache
// apply to every query.
func WithResolver(resolver *configtypes.Resolver) Option {
	return func(o *options) {
		if resolver != nil {
			o.resolver = resolver
		}
	}
}

// WithLogger sets the logger used for resolver panics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxDepth bounds query nesting. Recursive types make unbounded queries
// possible, so a limit always applies.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithMaxParallelism bounds concurrently resolved fields per query.
func WithMaxParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxParallelism = n
		}
	}
}

// NewSchema parses the SDL and binds it to the descriptor resolvers.
func NewSchema(opts ...Option) (*graphql.Schema, error) {
	cfg := options{
		resolver:       configtypes.NewResolver(),
		logger:         zap.NewNop(),
		maxDepth:       DefaultMaxDepth,
		maxParallelism: DefaultMaxParallelism,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	schema, err := graphql.ParseSchema(schemaSDL, &queryResolver{resolver: cfg.resolver},
		graphql.MaxDepth(cfg.maxDepth),
		graphql.MaxParallelism(cfg.maxParallelism),
		graphql.Logger(panicLogger{logger: cfg.logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("gql: parse schema: %w", err)
	}
	return schema, nil
}

type panicLogger struct {
	logger *zap.Logger
}

func (l panicLogger) LogPanic(_ context.Context, value interface{}) {
	l.logger.Error("graphql resolver panic", zap.Any("panic", value), zap.Stack("stack"))
}
