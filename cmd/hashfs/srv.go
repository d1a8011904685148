package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"hashfs/internal/config"
	"hashfs/internal/engine"
	"hashfs/internal/server"
	"hashfs/internal/shard"
	"hashfs/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the hashfs API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			logger.Info("opening catalog", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			shards, err := shard.NewResolver(cfg.DataDir)
			if err != nil {
				return err
			}
			logger.Info("storage ready",
				"root", shards.Root(),
				"capacity_bytes", cfg.CapacityBytes(),
				"max_object_bytes", cfg.MaxObjectBytes,
				"ttl", cfg.TTL())

			eng := engine.New(st, shards, engine.Config{
				CapacityBytes:  cfg.CapacityBytes(),
				MaxObjectBytes: cfg.MaxObjectBytes,
				TTL:            cfg.TTL(),
				PriceBase:      cfg.Pricing.Base,
				PricePerMB:     cfg.Pricing.PerMB,
				PriceFallback:  cfg.Pricing.Fallback,
			}, slog.Default().With("component", "engine"))

			srv := server.New(addr, eng, server.Options{
				MaxBodyBytes: cfg.MaxObjectBytes,
				Pricing: server.PricingOptions{
					Base:       cfg.Pricing.Base,
					PerMB:      cfg.Pricing.PerMB,
					PutPerKB:   cfg.Pricing.PutPerKB,
					PutPerHour: cfg.Pricing.PutPerHour,
				},
			}, logger)
			return srv.ListenAndServe()
		},
	}
}
