package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/spf13/cobra"
)

// now is a seam for tests.
var now = time.Now

type tokenConfig struct {
	secret    string
	algorithm string
}

// codec builds a codec from flags, falling back to JWT_SECRET and
// JWT_ALGORITHM like the server does.
func (c *tokenConfig) codec() (*auth.Codec, error) {
	secret := c.secret
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	name := c.algorithm
	if name == "" {
		name = os.Getenv("JWT_ALGORITHM")
	}
	if name == "" {
		name = string(auth.DefaultAlgorithm)
	}

	alg, err := auth.ParseAlgorithm(name)
	if err != nil {
		return nil, err
	}
	signing, err := auth.NewSigningConfig([]byte(secret), alg)
	if err != nil {
		return nil, err
	}
	return auth.NewCodec(signing, auth.WithClock(now))
}

// NewTokenCmd creates the token command group.
func NewTokenCmd() *cobra.Command {
	cfg := &tokenConfig{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or inspect session tokens",
	}

	cmd.PersistentFlags().StringVar(&cfg.secret, "secret", "", "signing secret (default $JWT_SECRET)")
	cmd.PersistentFlags().StringVar(&cfg.algorithm, "alg", "", "signing algorithm (default $JWT_ALGORITHM or HS512)")

	cmd.AddCommand(newTokenIssueCmd(cfg))
	cmd.AddCommand(newTokenInspectCmd(cfg))

	return cmd
}

func newTokenIssueCmd(cfg *tokenConfig) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "issue <subject>",
		Short: "Issue a session token for a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenIssue(cmd, cfg, args[0], ttl)
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 10*time.Minute, "token lifetime")

	return cmd
}

func runTokenIssue(cmd *cobra.Command, cfg *tokenConfig, subject string, ttl time.Duration) error {
	codec, err := cfg.codec()
	if err != nil {
		return err
	}
	token, err := codec.Encode(auth.NewSessionClaims(subject, now(), ttl))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

type inspectOutput struct {
	ID        string    `json:"jti,omitempty"`
	Subject   string    `json:"sub"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
	TTL       string    `json:"ttl"`
	Algorithm string    `json:"alg"`
}

func newTokenInspectCmd(cfg *tokenConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <token>",
		Short: "Verify a session token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenInspect(cmd, cfg, args[0])
		},
	}
}

func runTokenInspect(cmd *cobra.Command, cfg *tokenConfig, token string) error {
	codec, err := cfg.codec()
	if err != nil {
		return err
	}
	claims, err := codec.Decode(token)
	if err != nil {
		return fmt.Errorf("token rejected: %w", err)
	}

	out, err := json.MarshalIndent(inspectOutput{
		ID:        claims.ID,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.UTC(),
		ExpiresAt: claims.ExpiresAt.UTC(),
		TTL:       claims.TTL().String(),
		Algorithm: string(codec.Algorithm()),
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
