package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hashfs/internal/api"
	"hashfs/internal/config"
	"hashfs/internal/digest"
)

const putConcurrency = 4

type putResult struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

func newPutCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		contentType   string
		ownerIdentity string
	)

	cmd := &cobra.Command{
		Use:   "put <file> [<file>...]",
		Short: "Upload files, each stored under its SHA-256 hash",
		Args:  requireAtLeastArgs(1, "at least one file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(cfg.APIURL)

			results := make([]putResult, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(putConcurrency)
			for i, path := range args {
				g.Go(func() error {
					body, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					if int64(len(body)) > cfg.MaxObjectBytes {
						return fmt.Errorf("%s: %d bytes exceeds the %d byte object limit", path, len(body), cfg.MaxObjectBytes)
					}

					hash := digest.Compute(body)
					ack, err := client.Put(ctx, hash, body, contentType, ownerIdentity)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					results[i] = putResult{Path: path, Hash: ack, Size: int64(len(body))}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if *jsonOutput {
				return writeJSON(results)
			}
			for _, res := range results {
				if err := writePlain("%s\n", res.Hash); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&contentType, "content-type", "t", "", "content type recorded with the object")
	cmd.Flags().StringVar(&ownerIdentity, "pkh", "", "owner identity (base58check public key hash)")

	return cmd
}
