package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"hashfs/internal/digest"
)

func requireAtLeastArgs(min int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < min {
			return errors.New(message)
		}
		return nil
	}
}

// requireHashArg insists on exactly one well-formed object key, so
// obviously bad requests never reach the network.
func requireHashArg(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("exactly one hash is required")
	}
	if len(args[0]) != digest.KeyLength {
		return fmt.Errorf("invalid hash length %d for %q, want %d", len(args[0]), args[0], digest.KeyLength)
	}
	return nil
}
