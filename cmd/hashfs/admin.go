package main

import (
	"github.com/spf13/cobra"

	"hashfs/internal/api"
	"hashfs/internal/config"
)

func newAdminCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator maintenance commands",
	}

	cmd.AddCommand(newAdminReconcileCmd(cfg, jsonOutput))

	return cmd
}

func newAdminReconcileCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Sweep orphaned object files that have no catalog record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(cfg.APIURL)
			report, err := client.Reconcile(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(report)
			}
			return writePlain("orphan files: %d (%d bytes)\nmissing files: %d\ndry run: %v\n",
				report.OrphanFiles, report.OrphanBytes, report.MissingFiles, report.DryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report orphans without deleting them")

	return cmd
}
