package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for authctl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "authctl",
		Short:         "gophauth operator tool",
		SilenceUsage: true,
	}

	cmd.AddCommand(NewHashCmd())
	cmd.AddCommand(NewVerifyCmd())
	cmd.AddCommand(NewGenSecretCmd())
	cmd.AddCommand(NewTokenCmd())

	return cmd
}
