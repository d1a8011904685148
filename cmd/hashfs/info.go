package main

import (
	"github.com/spf13/cobra"

	"hashfs/internal/api"
	"hashfs/internal/config"
)

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var yamlOutput bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the server's pricing announcement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(cfg.APIURL)
			doc, err := client.Info(cmd.Context())
			if err != nil {
				return err
			}
			return writeDoc(doc, *jsonOutput, yamlOutput)
		},
	}

	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "output YAML")

	return cmd
}

func newStatusCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var yamlOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show store occupancy and free space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(cfg.APIURL)
			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			if *jsonOutput || yamlOutput {
				return writeDoc(status, *jsonOutput, yamlOutput)
			}
			return writePlain("objects: %d\ntotal: %d bytes\nfree: %d bytes\ncapacity: %d bytes\n",
				status.Objects, status.TotalBytes, status.FreeBytes, status.CapacityBytes)
		},
	}

	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "output YAML")

	return cmd
}

func newPriceCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var yamlOutput bool

	cmd := &cobra.Command{
		Use:   "price <hash>",
		Short: "Quote the retrieval price for a stored object",
		Args:  requireHashArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(cfg.APIURL)
			price, err := client.Price(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if *jsonOutput || yamlOutput {
				return writeDoc(price, *jsonOutput, yamlOutput)
			}
			return writePlain("%d\n", price.Price)
		},
	}

	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "output YAML")

	return cmd
}
