// Command hash-generator prints password hashes for seeding accounts directly
// into the identity store.
package main

import (
	"fmt"
	"os"

	"github.com/phrazzld/hotel-listing-api/internal/config"
	"github.com/phrazzld/hotel-listing-api/internal/service/auth"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.AuthConfig{}

	cmd := &cobra.Command{
		Use:           "hash-generator PASSWORD...",
		Short:         "Hash passwords with the configured algorithm",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			hasher, err := auth.NewPasswordHasher(cfg)
			if err != nil {
				return err
			}
			for _, password := range args {
				hash, err := hasher.Hash(password)
				if err != nil {
					return fmt.Errorf("hash password: %w", err)
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), hash); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.PasswordHasher, "hasher", "bcrypt", "Hash algorithm (bcrypt, argon2id)")
	cmd.Flags().IntVar(&cfg.BCryptCost, "cost", 10, "bcrypt cost")
	return cmd
}
