package cli

import (
	"context"
	"fmt"

	"github.com/frobware/go-vppcfg/document"
)

// DumpCmd reads the live dataplane state and renders it back into
// document form, for bootstrapping a config from a hand-configured
// dataplane.
type DumpCmd struct {
	Output string `name:"output" short:"o" help:"Output file ('-' for stdout)." default:"-"`
}

// Run executes the dump command.
func (c *DumpCmd) Run(cli *CLI, ctx context.Context) error {
	logger, err := cli.Logger()
	if err != nil {
		return err
	}
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	dp, err := cli.connect(cfg, logger)
	if err != nil {
		return err
	}
	defer dp.Close()

	live, err := dp.ReadLive(ctx)
	if err != nil {
		return DataplaneError{Err: err}
	}

	out, closeOut, err := openOutput(c.Output)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer closeOut()

	return document.FromSnapshot(live).Write(out)
}
