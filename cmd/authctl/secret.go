package main

import (
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/spf13/cobra"
)

const minSecretBytes = 16

type secretConfig struct {
	size int
}

// NewGenSecretCmd creates the gen-secret subcommand.
func NewGenSecretCmd() *cobra.Command {
	cfg := &secretConfig{}

	cmd := &cobra.Command{
		Use:   "gen-secret",
		Short: "Generate a random token signing secret",
		Long:  `Print a hex encoded random secret suitable for JWT_SECRET.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenSecret(cmd, cfg)
		},
	}

	cmd.Flags().IntVar(&cfg.size, "bytes", 64, "number of random bytes")

	return cmd
}

func runGenSecret(cmd *cobra.Command, cfg *secretConfig) error {
	if cfg.size < minSecretBytes {
		return fmt.Errorf("secret must be at least %d bytes", minSecretBytes)
	}
	s, err := common.MakeRandHexString(cfg.size)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), s)
	return nil
}
