// Command domainctl resolves, finalizes and dispatches domain operations from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smartcontractkit/domain-coordinator/config"
	"github.com/smartcontractkit/domain-coordinator/pkg/commands"
	"github.com/smartcontractkit/domain-coordinator/pkg/logger"
)

const defaultConfigPath = "domainctl.yml"

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, os.Args[1:], os.Stdout)
}

// run loads the config named by --config, then executes the command line.
func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := loadConfig(configPath(args))
	if err != nil {
		return err
	}
	lggr, err := cfg.Log.Logger()
	if err != nil {
		return err
	}
	defer func() { _ = lggr.Sync() }()

	root := newRootCmd(lggr, cfg)
	root.SetArgs(args)
	root.SetOut(out)

	return root.ExecuteContext(ctx)
}

func newRootCmd(lggr logger.Logger, cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "domainctl",
		Short:         "Domain operation coordinator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", defaultConfigPath,
		"Config file, environment variables are used when it does not exist")

	cmds := commands.New(lggr, cfg)
	root.AddCommand(
		cmds.Resolve(),
		cmds.Finalize(),
		cmds.Run(),
		cmds.History(),
	)

	return root
}

// configPath picks the --config flag out of args ahead of command parsing, since the commands
// are built from the config.
func configPath(args []string) string {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	path := fs.StringP("config", "c", defaultConfigPath, "")
	_ = fs.Parse(args)

	return *path
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
