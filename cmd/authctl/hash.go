package main

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/spf13/cobra"
)

// newHasher is a seam so tests can use cheap parameters.
var newHasher = cryptox.NewHasher

type hashConfig struct {
	scheme string
}

// NewHashCmd creates the hash subcommand.
func NewHashCmd() *cobra.Command {
	cfg := &hashConfig{}

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash a password for storage",
		Long: `Read a password from the terminal (or the first line of stdin) and
print its encoded hash in the format stored in the credentials table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHash(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.scheme, "scheme", cryptox.SchemeArgon2id, "hash scheme (argon2id or scrypt)")

	return cmd
}

func runHash(cmd *cobra.Command, cfg *hashConfig) error {
	hasher, err := newHasher(cfg.scheme)
	if err != nil {
		return err
	}

	password, err := promptPassword(cmd, "Password: ")
	if err != nil {
		return err
	}
	if err := cryptox.ValidatePassword(password); err != nil {
		return err
	}

	encoded, err := hasher.Hash(password, cryptox.NewSaltGenerator().Generate())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), encoded)
	return nil
}

// ErrMismatch is returned by verify when the password does not match.
var ErrMismatch = errors.New("password does not match")

// NewVerifyCmd creates the verify subcommand.
func NewVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <encoded-hash>",
		Short: "Check a password against an encoded hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args[0])
		},
	}
}

func runVerify(cmd *cobra.Command, encoded string) error {
	router, err := cryptox.NewDefaultRouter(cryptox.SchemeArgon2id)
	if err != nil {
		return err
	}

	password, err := promptPassword(cmd, "Password: ")
	if err != nil {
		return err
	}

	ok, err := router.Verify(password, encoded)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMismatch
	}

	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	if router.NeedsRehash(encoded) {
		fmt.Fprintf(cmd.OutOrStdout(), "note: hash will be upgraded to %s on next login\n", router.Scheme())
	}
	return nil
}
