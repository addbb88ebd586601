package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"
)

func keysCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "keys",
		Usage: "List every type key in the snapshot",
		Action: withRuntime(func(_ context.Context, _ *cli.Command, rt *runtime) error {
			mem, err := rt.loadSnapshot()
			if err != nil {
				return err
			}
			for _, key := range mem.Keys() {
				if _, err := fmt.Fprintln(stdout, key); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}
