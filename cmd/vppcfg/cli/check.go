package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/frobware/go-vppcfg/document"
)

// CheckCmd validates a desired-state document without touching the
// dataplane.
type CheckCmd struct {
	Document string `arg:"" help:"Desired-state YAML document." type:"existingfile"`
}

// Run executes the check command.
func (c *CheckCmd) Run(cli *CLI, ctx context.Context) error {
	logger, err := cli.Logger()
	if err != nil {
		return err
	}

	doc, err := document.Load(c.Document)
	if err != nil {
		return err
	}

	snapshot, errs := document.NewValidator(logger).Validate(doc)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	fmt.Printf("%s: ok (%d objects)\n", c.Document, snapshot.Len())
	return nil
}
