package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frobware/go-vppcfg/directive"
	"github.com/frobware/go-vppcfg/document"
	"github.com/frobware/go-vppcfg/journal"
	"github.com/frobware/go-vppcfg/reconciler"
	"github.com/frobware/go-vppcfg/vpp"
)

// PlanCmd computes the directive plan for a document without executing
// anything.
type PlanCmd struct {
	Document string `arg:"" help:"Desired-state YAML document." type:"existingfile"`
	Output   string `name:"output" short:"o" help:"Plan output file ('-' for stdout)." default:"-"`
	Novpp    bool   `name:"novpp" help:"Plan against a synthetic dataplane instead of live state."`
	Force    bool   `name:"force" help:"Continue planning past phase failures; the plan is marked partial."`
}

// Run executes the plan command.
func (c *PlanCmd) Run(cli *CLI, ctx context.Context) error {
	logger, err := cli.Logger()
	if err != nil {
		return err
	}
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	var client vpp.Client
	if !c.Novpp {
		dp, err := cli.connect(cfg, logger)
		if err != nil {
			return err
		}
		defer dp.Close()
		client = dp
	}

	plan, planErr := planDocument(ctx, logger, client, c.Document, c.Novpp, c.Force)

	if jnl, err := cli.openJournal(cfg, logger); err != nil {
		logger.Warn("journal unavailable", "error", err)
	} else if jnl != nil {
		defer jnl.Close()
		recordRun(ctx, jnl, logger, "plan", c.Document, plan, nil)
	}

	if plan != nil && plan.Outcome != directive.OutcomeFailedAborted {
		out, closeOut, err := openOutput(c.Output)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		defer closeOut()
		if err := plan.Write(out, true); err != nil {
			return err
		}
	}

	return planErr
}

// planDocument is the shared plan/apply pipeline: parse and validate
// the document, obtain the live snapshot, check preconditions, run the
// three planning phases. client must be connected unless novpp is set,
// in which case a mock dataplane is synthesized from the document.
func planDocument(ctx context.Context, logger *slog.Logger, client vpp.Client, docPath string, novpp, force bool) (*directive.Plan, error) {
	doc, err := document.Load(docPath)
	if err != nil {
		return nil, err
	}

	desired, errs := document.NewValidator(logger).Validate(doc)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if novpp {
		mock, err := vpp.NewMock(doc)
		if err != nil {
			return nil, err
		}
		client = mock
	}

	live, err := client.ReadLive(ctx)
	if err != nil {
		return nil, DataplaneError{Err: err}
	}

	caps := reconciler.Capabilities{}
	if !novpp {
		linuxCP, err := client.Capability(ctx, vpp.CapabilityLinuxCP)
		if err != nil {
			return nil, DataplaneError{Err: err}
		}
		caps.LinuxCP = linuxCP
	}

	r := reconciler.New(desired, live, reconciler.Options{
		Force:        force,
		LiveQueried:  !novpp,
		Capabilities: caps,
		Logger:       logger,
	})
	if err := r.Preconditions(); err != nil {
		return nil, err
	}

	plan, err := r.Plan()
	if err != nil {
		if plan.Outcome == directive.OutcomeFailedForced {
			return plan, ForcedPartialError{Err: err}
		}
		return plan, err
	}
	return plan, nil
}

// recordRun journals a run. Journaling is an audit aid; a failure to
// record never fails the run itself.
func recordRun(ctx context.Context, jnl *journal.Journal, logger *slog.Logger, command, docPath string, plan *directive.Plan, results []reconciler.ExecResult) {
	if plan == nil {
		return
	}
	if _, err := jnl.Record(ctx, command, docPath, plan, results); err != nil {
		logger.Warn("journal record failed", "error", err)
	}
}
