package cli

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// JournalCmd inspects recorded reconciliation runs.
type JournalCmd struct {
	List JournalListCmd `cmd:"" default:"withargs" help:"List recent runs."`
	Show JournalShowCmd `cmd:"" help:"Show a run's directive listing."`
}

// JournalListCmd lists recent journaled runs, newest first.
type JournalListCmd struct {
	Limit int `name:"limit" short:"n" help:"Maximum number of runs to list." default:"20"`
}

// Run executes the journal list command.
func (c *JournalListCmd) Run(cli *CLI, ctx context.Context) error {
	logger, err := cli.Logger()
	if err != nil {
		return err
	}
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	jnl, err := cli.openJournal(cfg, logger)
	if err != nil {
		return err
	}
	if jnl == nil {
		return fmt.Errorf("no journal configured (set journal.path in %s)", cli.Config)
	}
	defer jnl.Close()

	runs, err := jnl.ListRuns(ctx, c.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%-6d %s %-6s %-14s %s\n",
			run.ID, run.StartedAt.Format(time.RFC3339), run.Command,
			run.Outcome, run.ConfigPath)
	}
	return nil
}

// JournalShowCmd prints one run with its full directive listing.
type JournalShowCmd struct {
	ID int64 `arg:"" help:"Run id."`
}

// Run executes the journal show command.
func (c *JournalShowCmd) Run(cli *CLI, ctx context.Context) error {
	logger, err := cli.Logger()
	if err != nil {
		return err
	}
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	jnl, err := cli.openJournal(cfg, logger)
	if err != nil {
		return err
	}
	if jnl == nil {
		return fmt.Errorf("no journal configured (set journal.path in %s)", cli.Config)
	}
	defer jnl.Close()

	run, err := jnl.GetRun(ctx, c.ID)
	if err != nil {
		return err
	}

	fmt.Printf("run %d: %s %s %s (%s)\n",
		run.ID, run.StartedAt.Format(time.RFC3339), run.Command,
		run.ConfigPath, run.Outcome)
	for _, failure := range run.Failures {
		fmt.Printf("  failure: %s\n", failure)
	}

	entries, err := jnl.RunDirectives(ctx, c.ID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		status := ""
		if e.Executed {
			status = " [executed]"
		}
		if e.Error != "" {
			status = " [failed: " + e.Error + "]"
		}
		fmt.Printf("  %3d %-6s %-7s %s%s\n", e.Seq, e.Phase, e.Op, e.Target.String(), status)
		for _, cmd := range e.Commands {
			fmt.Printf("      %s\n", strings.TrimSpace(cmd))
		}
	}
	return nil
}
