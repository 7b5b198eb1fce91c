// Package ops provides CLI commands for resolving, finalizing and dispatching domain operations.
package ops

import (
	"context"
	"os"

	"github.com/smartcontractkit/domain-coordinator/dispatch"
	"github.com/smartcontractkit/domain-coordinator/history"
)

// HistoryStore is the part of the history store used by the commands.
type HistoryStore interface {
	dispatch.HistoryRecorder
	List(ctx context.Context, limit int) ([]history.Entry, error)
	Close() error
}

// FileReaderFunc reads an input file.
type FileReaderFunc func(path string) ([]byte, error)

// TopologyLoaderFunc loads the topology replayed by the run command.
type TopologyLoaderFunc func(path string) (dispatch.Topology, error)

// HistoryOpenerFunc opens the history store.
type HistoryOpenerFunc func(ctx context.Context, driver, dsn string) (HistoryStore, error)

// defaultHistoryOpener opens the SQL history store.
func defaultHistoryOpener(ctx context.Context, driver, dsn string) (HistoryStore, error) {
	return history.Open(ctx, driver, dsn)
}

// Deps holds the injectable dependencies for the operation commands.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// ReadFile reads operation and snapshot files.
	// Default: os.ReadFile
	ReadFile FileReaderFunc

	// TopologyLoader loads the topology of the run command.
	// Default: dispatch.LoadTopology
	TopologyLoader TopologyLoaderFunc

	// HistoryOpener opens the store finalized outcomes are recorded in.
	// Default: history.Open
	HistoryOpener HistoryOpenerFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.ReadFile == nil {
		d.ReadFile = os.ReadFile
	}
	if d.TopologyLoader == nil {
		d.TopologyLoader = dispatch.LoadTopology
	}
	if d.HistoryOpener == nil {
		d.HistoryOpener = defaultHistoryOpener
	}
}
