package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/tyemirov/tauth/pkg/sessionvalidator"
)

const (
	flagUserID   = "user-id"
	flagEmail    = "email"
	flagRoles    = "roles"
	flagTokenTTL = "ttl"

	defaultTokenIssuer = "tauth"
	defaultTokenTTL    = 12 * time.Hour
)

type tokenConfig struct {
	SigningKey string
	Issuer     string
	UserID     string
	Email      string
	Roles      []string
	TTL        time.Duration
}

func newTokenCommand() *cobra.Command {
	cfg := &tokenConfig{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development session token for the HTTP API",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := bindFlags(cmd, flagJWTSigningKey, flagJWTIssuer, flagUserID, flagEmail, flagRoles, flagTokenTTL)
			if err != nil {
				return err
			}
			cfg.SigningKey = v.GetString(flagJWTSigningKey)
			cfg.Issuer = defaultIfBlank(v.GetString(flagJWTIssuer), defaultTokenIssuer)
			cfg.UserID = strings.TrimSpace(v.GetString(flagUserID))
			cfg.Email = strings.TrimSpace(v.GetString(flagEmail))
			cfg.Roles = v.GetStringSlice(flagRoles)
			cfg.TTL = v.GetDuration(flagTokenTTL)
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			signed, err := mintSessionToken(*cfg, time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().String(flagJWTSigningKey, "", "TAuth JWT signing key (required)")
	cmd.Flags().String(flagJWTIssuer, defaultTokenIssuer, "JWT issuer")
	cmd.Flags().String(flagUserID, "", "user identifier (required)")
	cmd.Flags().String(flagEmail, "", "user email")
	cmd.Flags().StringSlice(flagRoles, []string{"lodging"}, "granted roles")
	cmd.Flags().Duration(flagTokenTTL, defaultTokenTTL, "token lifetime")
	return cmd
}

// Validate applies defaults and checks required values.
func (cfg *tokenConfig) Validate() error {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTokenTTL
	}
	if len(cfg.SigningKey) == 0 {
		return fmt.Errorf("jwt signing key is required")
	}
	if cfg.UserID == "" {
		return fmt.Errorf("%s is required", flagUserID)
	}
	return nil
}

func mintSessionToken(cfg tokenConfig, now time.Time) (string, error) {
	claims := &sessionvalidator.Claims{
		UserID:          cfg.UserID,
		UserEmail:       cfg.Email,
		UserDisplayName: cfg.UserID,
		UserRoles:       cfg.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SigningKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
