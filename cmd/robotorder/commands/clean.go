package commands

import (
	"log/slog"
	"robotorder/internal/cleanup"

	"github.com/spf13/cobra"
)

func newCleanCmd(a *app) *cobra.Command {
	var archive bool

	cmd := &cobra.Command{
		Use:   "clean [--archive]",
		Short: "Removes the receipts and screenshots left behind by an aborted run.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := a.cfg.Paths()
			dirs := []string{paths.Receipts(), paths.Screenshots()}
			if archive {
				dirs = append(dirs, paths.Archive())
			}
			err := cleanup.Clean(dirs...)
			if err != nil {
				return err
			}
			slog.Info("cleaned", "paths", dirs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&archive, "archive", false, "Also remove the receipts archive.")

	return cmd
}
