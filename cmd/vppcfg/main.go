// vppcfg reconciles a VPP dataplane with a declarative YAML document.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/frobware/go-vppcfg/cmd/vppcfg/cli"
)

func main() {
	var root cli.CLI
	parser := kong.Must(&root, cli.KongOptions()...)

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	if err := kctx.Run(&root); err != nil {
		fmt.Fprintf(os.Stderr, "vppcfg: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}
