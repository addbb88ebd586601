package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-configtypes/schema/openapi"
)

func openAPICommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "openapi",
		Usage:     "Print an OpenAPI document whose request body is the type KEY",
		ArgsUsage: "KEY",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Usage: "info.title"},
			&cli.StringFlag{Name: "doc-version", Usage: "info.version"},
			&cli.StringFlag{Name: "path", Usage: "operation path (default /config)"},
			&cli.StringFlag{Name: "method", Usage: "operation method (default post)"},
			&cli.StringFlag{Name: "root-component", Usage: "publish the root schema under this component name"},
		},
		Action: withRuntime(func(_ context.Context, cmd *cli.Command, rt *runtime) error {
			key, err := requireKey(cmd)
			if err != nil {
				return err
			}
			mem, err := rt.loadSnapshot()
			if err != nil {
				return err
			}
			root, err := rt.resolver.Session(mem).Resolve(key)
			if err != nil {
				return err
			}
			generator := openapi.NewGenerator(
				openapi.WithInfo(cmd.String("title"), cmd.String("doc-version")),
				openapi.WithOperation(cmd.String("path"), cmd.String("method"), ""),
				openapi.WithRootComponent(cmd.String("root-component")),
			)
			data, err := generator.GenerateJSON(root)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(stdout, "%s\n", data)
			return err
		}),
	}
}
