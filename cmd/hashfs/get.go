package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hashfs/internal/api"
	"hashfs/internal/config"
)

func newGetCmd(cfg *config.Config) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "get <hash>",
		Short: "Download an object by its SHA-256 hash",
		Args:  requireHashArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := strings.ToLower(args[0])

			client := api.NewClient(cfg.APIURL)
			body, _, err := client.Get(cmd.Context(), hash)
			if err != nil {
				return err
			}

			if outputPath != "" {
				return os.WriteFile(outputPath, body, 0o644)
			}
			_, err = os.Stdout.Write(body)
			return err
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write object to file instead of stdout")

	return cmd
}
