package cli

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/frobware/go-vppcfg/config"
	"github.com/frobware/go-vppcfg/journal"
	"github.com/frobware/go-vppcfg/logging"
	"github.com/frobware/go-vppcfg/vpp"
)

// CLI is the root command structure for vppcfg.
type CLI struct {
	Config    string `name:"config" help:"Tool config file path." default:"${default_config_path}"`
	Log       string `name:"log" help:"Log spec (e.g., 'info,reconciler=debug')." env:"VPPCFG_LOG"`
	APISocket string `name:"api-socket" help:"VPP binary API socket path (overrides config)."`

	Check   CheckCmd   `cmd:"" help:"Validate a desired-state document."`
	Dump    DumpCmd    `cmd:"" help:"Read the dataplane and emit it as a document."`
	Plan    PlanCmd    `cmd:"" help:"Compute the directive plan without touching the dataplane."`
	Apply   ApplyCmd   `cmd:"" help:"Plan and execute the plan against the dataplane."`
	Journal JournalCmd `cmd:"" help:"Inspect recorded reconciliation runs."`
}

// KongOptions returns the Kong configuration options for the CLI.
func KongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("vppcfg"),
		kong.Description("Declarative configuration for a VPP dataplane."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"default_config_path": config.DefaultConfigPath,
		},
	}
}

// LoadConfig loads the tool configuration from the config file path.
func (c *CLI) LoadConfig() (config.Config, error) {
	return config.Load(c.Config)
}

// Logger creates a logger for CLI commands. The spec precedence is
// --log (which also carries VPPCFG_LOG) over the config file.
func (c *CLI) Logger() (*slog.Logger, error) {
	cfg, err := c.LoadConfig()
	if err != nil {
		return nil, err
	}

	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	return logging.New(logging.Options{
		CLISpec:    c.Log,
		ConfigSpec: cfg.Logging.Level,
		Format:     format,
		Output:     os.Stderr,
	})
}

// apiSocket resolves the API socket path: flag over config over the
// compiled-in default.
func (c *CLI) apiSocket(cfg config.Config) string {
	if c.APISocket != "" {
		return c.APISocket
	}
	if cfg.VPP.APISocket != "" {
		return cfg.VPP.APISocket
	}
	return vpp.DefaultAPISocket
}

// connect opens the govpp dataplane client.
func (c *CLI) connect(cfg config.Config, logger *slog.Logger) (*vpp.Dataplane, error) {
	dp, err := vpp.Connect(c.apiSocket(cfg), logger)
	if err != nil {
		return nil, DataplaneError{Err: err}
	}
	return dp, nil
}

// openJournal opens the run journal when one is configured. A nil
// journal with a nil error means journaling is disabled.
func (c *CLI) openJournal(cfg config.Config, logger *slog.Logger) (*journal.Journal, error) {
	if cfg.Journal.Path == "" {
		return nil, nil
	}
	return journal.Open(cfg.Journal.Path, logger)
}

// openOutput opens the output target; "-" means stdout.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
