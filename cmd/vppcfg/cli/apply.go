package cli

import (
	"context"
	"fmt"

	"github.com/frobware/go-vppcfg/reconciler"
)

// ApplyCmd plans and then executes the plan against the live dataplane.
type ApplyCmd struct {
	Document      string `arg:"" help:"Desired-state YAML document." type:"existingfile"`
	Force         bool   `name:"force" help:"Continue planning past phase failures; the plan is marked partial."`
	AcceptPartial bool   `name:"accept-partial" help:"Execute a partial plan produced by a forced run."`
}

// Run executes the apply command.
func (c *ApplyCmd) Run(cli *CLI, ctx context.Context) error {
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

	plan, planErr := planDocument(ctx, logger, dp, c.Document, false, c.Force)

	var results []reconciler.ExecResult
	var applyErr error
	switch {
	case plan == nil:
		// Nothing planned; nothing to journal or execute.
		return planErr
	case planErr != nil && !c.AcceptPartial:
		applyErr = planErr
	default:
		results, applyErr = reconciler.Apply(ctx, dp, plan, c.AcceptPartial, logger)
	}

	if jnl, err := cli.openJournal(cfg, logger); err != nil {
		logger.Warn("journal unavailable", "error", err)
	} else if jnl != nil {
		defer jnl.Close()
		recordRun(ctx, jnl, logger, "apply", c.Document, plan, results)
	}

	if applyErr != nil {
		return applyErr
	}
	fmt.Printf("applied %d directives\n", len(plan.Directives))
	return nil
}
