package main

import (
	"github.com/spf13/cobra"

	"hashfs/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		endpoint   string
		jsonOutput bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "hashfs",
		Short: "Content-addressed blob store over HTTP",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if endpoint != "" {
				cfg.APIURL = endpoint
			}
			return configureLogger(logLevel, cfg.LogLevel)
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "API endpoint URI (overrides config)")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newGetCmd(cfg),
		newPutCmd(cfg, &jsonOutput),
		newInfoCmd(cfg, &jsonOutput),
		newStatusCmd(cfg, &jsonOutput),
		newPriceCmd(cfg, &jsonOutput),
		newAdminCmd(cfg, &jsonOutput),
	)

	return cmd
}
