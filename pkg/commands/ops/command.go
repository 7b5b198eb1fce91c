package ops

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/domain-coordinator/config"
	"github.com/smartcontractkit/domain-coordinator/coordination"
	"github.com/smartcontractkit/domain-coordinator/dispatch"
	"github.com/smartcontractkit/domain-coordinator/operation"
	"github.com/smartcontractkit/domain-coordinator/pkg/logger"
	"github.com/smartcontractkit/domain-coordinator/value"
)

// Config holds the settings shared by the operation commands.
type Config struct {
	Logger logger.Logger
	// LocalHost is the name of the coordinating host.
	LocalHost string
	Dispatch  dispatch.Config
	History   config.HistoryConfig
	// Deps overrides the production dependencies, nil uses the defaults.
	Deps *Deps
}

func (c *Config) deps() {
	if c.Deps == nil {
		c.Deps = &Deps{}
	}
	c.Deps.applyDefaults()
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
}

// NewResolveCommand creates the command printing how an operation is routed.
//
// Usage:
//
//	domainctl resolve -a /host=slave-a -n read-resource
//	domainctl resolve -f composite.yml
func NewResolveCommand(cfg Config) *cobra.Command {
	cfg.deps()

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the routing target of an operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, err := readOperation(cmd, cfg.Deps.ReadFile)
			if err != nil {
				return err
			}
			target := coordination.ResolveTarget(op, cfg.LocalHost)

			return printYAML(cmd.OutOrStdout(), newResolution(op, target))
		},
	}
	addOperationFlags(cmd)

	return cmd
}

// NewFinalizeCommand creates the command finalizing an aggregation snapshot and printing the
// response.
func NewFinalizeCommand(cfg Config) *cobra.Command {
	cfg.deps()

	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Finalize an aggregation snapshot",
		Long: `Loads a YAML or JSON snapshot of the results collected for one operation, runs the
final result handler on it and prints the response.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("snapshot")
			b, err := cfg.Deps.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read snapshot: %w", err)
			}
			snap, err := ParseSnapshot(b)
			if err != nil {
				return err
			}
			if snap.LocalHost == "" {
				snap.LocalHost = cfg.LocalHost
			}

			exec, err := snap.Finalize(cfg.Logger)
			if err != nil {
				return err
			}

			return printNode(cmd.OutOrStdout(), exec.Response())
		},
	}
	cmd.Flags().StringP("snapshot", "s", "", "Snapshot file (required)")
	_ = cmd.MarkFlagRequired("snapshot")

	return cmd
}

// NewRunCommand creates the command dispatching an operation against a topology file and
// printing the response.
func NewRunCommand(cfg Config) *cobra.Command {
	cfg.deps()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Dispatch an operation against a topology",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, err := readOperation(cmd, cfg.Deps.ReadFile)
			if err != nil {
				return err
			}
			topologyPath, _ := cmd.Flags().GetString("topology")
			topology, err := cfg.Deps.TopologyLoader(topologyPath)
			if err != nil {
				return err
			}
			client, err := dispatch.NewStaticClient(topology)
			if err != nil {
				return err
			}

			opts := []dispatch.Option{dispatch.WithConfig(cfg.Dispatch)}
			if record, _ := cmd.Flags().GetBool("record"); record {
				store, err := cfg.Deps.HistoryOpener(cmd.Context(), cfg.History.Driver, cfg.History.DSN)
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts, dispatch.WithHistory(store))
			}

			res, err := dispatch.NewDispatcher(topology.LocalHost, client, cfg.Logger, opts...).
				Dispatch(cmd.Context(), op)
			if res == nil {
				return err
			}
			cfg.Logger.Infow("Operation dispatched",
				"invocation", res.InvocationID, "outcome", res.Execution.Outcome(), "reports", len(res.Reports))
			if perr := printNode(cmd.OutOrStdout(), res.Execution.Response()); perr != nil {
				return perr
			}

			return err
		},
	}
	addOperationFlags(cmd)
	cmd.Flags().StringP("topology", "t", "", "Topology file (required)")
	cmd.Flags().BoolP("record", "r", false, "Record the outcome in the history store")
	_ = cmd.MarkFlagRequired("topology")

	return cmd
}

func addOperationFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Operation descriptor file, YAML or JSON")
	cmd.Flags().StringP("address", "a", "", "Operation address, e.g. /host=master/server=s1")
	cmd.Flags().StringP("name", "n", "", "Operation name")
	cmd.Flags().StringToStringP("param", "p", nil, "Operation parameter as key=value, the value is read as YAML")
	cmd.MarkFlagsMutuallyExclusive("file", "address")
	cmd.MarkFlagsMutuallyExclusive("file", "name")
	cmd.MarkFlagsMutuallyExclusive("file", "param")
}

// readOperation builds the operation from the --file flag, or from --address and --name.
func readOperation(cmd *cobra.Command, readFile FileReaderFunc) (operation.Descriptor, error) {
	path, _ := cmd.Flags().GetString("file")
	if path != "" {
		b, err := readFile(path)
		if err != nil {
			return operation.Descriptor{}, fmt.Errorf("failed to read operation: %w", err)
		}
		n, err := value.ParseYAML(b)
		if err != nil {
			return operation.Descriptor{}, fmt.Errorf("failed to parse operation: %w", err)
		}

		return operation.FromNode(n)
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		return operation.Descriptor{}, errors.New("either --file or --name must be set")
	}
	rawAddr, _ := cmd.Flags().GetString("address")
	addr, err := operation.ParseAddress(rawAddr)
	if err != nil {
		return operation.Descriptor{}, err
	}

	op := operation.New(addr, name)
	rawParams, _ := cmd.Flags().GetStringToString("param")
	if op.Params, err = parseParams(rawParams); err != nil {
		return operation.Descriptor{}, err
	}

	return op, nil
}

// parseParams decodes each parameter value as YAML, so "8080" is a number and "{a: 1}" an
// object. Keys are sorted.
func parseParams(raw map[string]string) (value.Node, error) {
	if len(raw) == 0 {
		return value.Undefined(), nil
	}
	params := make(map[string]any, len(raw))
	for k, v := range raw {
		var decoded any
		if err := yaml.Unmarshal([]byte(v), &decoded); err != nil {
			return value.Node{}, fmt.Errorf("param %s: %w", k, err)
		}
		params[k] = decoded
	}
	n, err := value.FromGo(params)
	if err != nil {
		return value.Node{}, fmt.Errorf("failed to convert params: %w", err)
	}

	return n, nil
}

// resolution is the printed form of a routing target.
type resolution struct {
	Operation string   `yaml:"operation"`
	Address   string   `yaml:"address"`
	Shape     string   `yaml:"shape"`
	Scope     string   `yaml:"scope"`
	Host      string   `yaml:"host"`
	Server    string   `yaml:"server,omitempty"`
	Params    string   `yaml:"params,omitempty"`
	Steps     []string `yaml:"steps,omitempty"`
}

func newResolution(op operation.Descriptor, target coordination.Target) resolution {
	r := resolution{
		Operation: op.Name,
		Address:   op.Address.String(),
		Shape:     op.Shape().String(),
		Scope:     target.Scope.String(),
		Host:      target.Host,
		Server:    target.Server,
	}
	if op.Params.IsDefined() {
		r.Params = op.Params.String()
	}
	for i, step := range target.Steps() {
		r.Steps = append(r.Steps, fmt.Sprintf("%s: %s %s", operation.StepLabel(i), step.Name, step.Address))
	}

	return r
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	return enc.Close()
}

func printNode(w io.Writer, n value.Node) error {
	b, err := n.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))

	return err
}
