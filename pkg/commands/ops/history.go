package ops

import (
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command group for finalized outcomes.
func NewHistoryCommand(cfg Config) *cobra.Command {
	cfg.deps()

	cmd := &cobra.Command{
		Use:   "history",
		Short: "History commands",
	}
	cmd.AddCommand(newHistoryListCmd(cfg))

	return cmd
}

func newHistoryListCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List finalized outcomes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			store, err := cfg.Deps.HistoryOpener(cmd.Context(), cfg.History.Driver, cfg.History.DSN)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Invocation", "Recorded", "Operation", "Address", "Outcome"})
			table.SetAutoWrapText(false)
			table.SetBorders(tablewriter.Border{
				Left:   false,
				Right:  false,
				Top:    true,
				Bottom: true,
			})
			for _, e := range entries {
				table.Append([]string{
					e.InvocationID, e.RecordedAt.UTC().Format(time.RFC3339), e.Operation, e.Address, e.Outcome,
				})
			}
			table.Render()

			return nil
		},
	}
	cmd.Flags().IntP("limit", "l", 20, "Maximum number of entries, 0 for all")

	return cmd
}
