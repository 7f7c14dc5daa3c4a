package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"robotorder/internal/runlog"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newRunsCmd(a *app) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "runs [--run <id>]",
		Short: "Shows the outcome of every order in the latest run.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := a.openRunLog(cmd.Context())
			if err != nil {
				return err
			}
			defer log.Close()
			return printRun(cmd.Context(), cmd.OutOrStdout(), log, runID)
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "The run to show instead of the latest one.")

	return cmd
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func printRun(ctx context.Context, out io.Writer, log runlog.Log, runID string) error {
	if runID == "" {
		run, err := log.LatestRun(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			fmt.Fprintln(out, "no runs recorded yet.")
			return nil
		}
		if err != nil {
			return err
		}
		runID = run.ID

		finished := "-"
		if !run.FinishedAt.IsZero() {
			finished = run.FinishedAt.Format(time.DateTime)
		}
		fmt.Fprintf(out, "run %s: %s (started %s, finished %s)\n", run.ID, run.Status, run.StartedAt.Format(time.DateTime), finished)
	}

	outcomes, err := log.RunOrders(ctx, runID)
	if err != nil {
		return err
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"#", "Order", "Outcome", "Attempts", "Receipt", "Error"})
	for _, o := range outcomes {
		t.AppendRow(table.Row{o.Index + 1, o.OrderNumber, o.Outcome, o.Attempts, o.ReceiptID, o.Error})
	}
	t.Render()
	return nil
}
