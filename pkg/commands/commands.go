// Package commands provides the CLI commands of domainctl.
//
// There are two ways to use commands from this package:
//
// 1. Via the Commands factory (recommended for most use cases):
//
//	cmds := commands.New(lggr, cfg)
//	app.AddCommand(
//	    cmds.Resolve(),
//	    cmds.Finalize(),
//	    cmds.Run(),
//	    cmds.History(),
//	)
//
// 2. Via direct package imports (for advanced DI/testing):
//
//	import "github.com/smartcontractkit/domain-coordinator/pkg/commands/ops"
//
//	app.AddCommand(ops.NewRunCommand(ops.Config{
//	    Logger:    lggr,
//	    LocalHost: "master",
//	    Deps:      &ops.Deps{...},  // inject fakes for testing
//	}))
package commands

import (
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/domain-coordinator/config"
	"github.com/smartcontractkit/domain-coordinator/dispatch"
	"github.com/smartcontractkit/domain-coordinator/pkg/commands/ops"
	"github.com/smartcontractkit/domain-coordinator/pkg/logger"
)

// Commands provides a factory for creating CLI commands with shared configuration.
// This allows setting the logger and config once and reusing them across all commands.
type Commands struct {
	lggr logger.Logger
	cfg  ops.Config
}

// New creates a new Commands factory. The dispatcher settings are taken from cfg, or the
// dispatch defaults when they cannot be built.
func New(lggr logger.Logger, cfg *config.Config) *Commands {
	dcfg, err := cfg.Dispatch.DispatcherConfig()
	if err != nil {
		lggr.Warnw("Invalid dispatch config, using defaults", "err", err)
		dcfg = dispatch.DefaultConfig()
	}

	return &Commands{
		lggr: lggr,
		cfg: ops.Config{
			Logger:    lggr,
			LocalHost: cfg.Coordinator.LocalHostName,
			Dispatch:  dcfg,
			History:   cfg.History,
		},
	}
}

// Resolve creates the command printing the routing target of an operation.
func (c *Commands) Resolve() *cobra.Command {
	return ops.NewResolveCommand(c.cfg)
}

// Finalize creates the command finalizing an aggregation snapshot.
func (c *Commands) Finalize() *cobra.Command {
	return ops.NewFinalizeCommand(c.cfg)
}

// Run creates the command dispatching an operation against a topology file.
func (c *Commands) Run() *cobra.Command {
	return ops.NewRunCommand(c.cfg)
}

// History creates the history command group.
func (c *Commands) History() *cobra.Command {
	return ops.NewHistoryCommand(c.cfg)
}
