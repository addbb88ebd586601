package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	configtypes "github.com/goliatone/go-configtypes"
	"github.com/goliatone/go-configtypes/internal/config"
	"github.com/goliatone/go-configtypes/pkg/closurecache"
	"github.com/goliatone/go-configtypes/pkg/snapshot"
)

var ErrNoSnapshotPath = errors.New("no snapshot path: pass --snapshot or set CONFIGTYPES_SNAPSHOT_PATH")

func newApp(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "configtypes",
		Usage: "Serve and inspect config type schema snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "snapshot",
				Aliases: []string{"s"},
				Usage:   "path to a JSON or YAML snapshot document",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:  "log-dev",
				Usage: "human readable development logging",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			describeCommand(stdout),
			openAPICommand(stdout),
			keysCommand(stdout),
		},
	}
}

// loadConfig reads the environment and lets flags set on the command line
// take precedence. Validation runs once, after the overrides.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.LoadEnv()
	if err != nil {
		return config.Config{}, err
	}
	if cmd.IsSet("snapshot") {
		cfg.SnapshotPath = cmd.String("snapshot")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-dev") {
		cfg.LogDevelopment = cmd.Bool("log-dev")
	}
	if cmd.IsSet("addr") {
		cfg.Addr = cmd.String("addr")
	}
	if cmd.IsSet("watch") {
		cfg.Watch = cmd.Bool("watch")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.LogDevelopment {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.Level = zap.NewAtomicLevelAt(cfg.Level())
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// runtime is the wiring shared by every command.
type runtime struct {
	cfg      config.Config
	logger   *zap.Logger
	cache    *closurecache.LRU
	resolver *configtypes.Resolver
}

func newRuntime(cfg config.Config, logger *zap.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger}
	opts := []configtypes.Option{
		configtypes.WithResolveLogger(configtypes.ZapResolveLogger(logger)),
	}
	if cfg.CacheSize > 0 {
		cache, err := closurecache.New(cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		rt.cache = cache
		opts = append(opts, configtypes.WithClosureCache(cache))
	}
	rt.resolver = configtypes.NewResolver(opts...)
	return rt, nil
}

// withRuntime adapts an action that needs configuration, a logger and a
// resolver.
func withRuntime(action func(ctx context.Context, cmd *cli.Command, rt *runtime) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Sync()
		}()
		rt, err := newRuntime(cfg, logger)
		if err != nil {
			return err
		}
		return action(ctx, cmd, rt)
	}
}

func (rt *runtime) loadSnapshot() (*snapshot.Memory, error) {
	if rt.cfg.SnapshotPath == "" {
		return nil, ErrNoSnapshotPath
	}
	return snapshot.LoadFile(rt.cfg.SnapshotPath)
}

func requireKey(cmd *cli.Command) (string, error) {
	key := cmd.Args().First()
	if key == "" {
		return "", fmt.Errorf("%s: a type key argument is required", cmd.Name)
	}
	return key, nil
}
