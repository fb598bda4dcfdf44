package main

import (
	"errors"
	"fmt"

	"pacs-study-browser/config"
	"pacs-study-browser/pkg/jwt"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Sign an access token with the configured JWT secret",
	Long: `Sign an access token for local testing of the API. Production tokens come
from the identity provider that shares JWT_SECRET with this service.`,
	Example: `  pacs-study-browser token alice --role radiologist --role admin`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roles, _ := cmd.Flags().GetStringSlice("role")

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.JWT.Secret == "" {
			return errors.New("JWT_SECRET is not set")
		}

		jwtService := jwt.NewJWTService(cfg.JWT)
		token, _, err := jwtService.GenerateAccessToken(args[0], roles)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "valid for %s\n", jwtService.GetAccessExpiry())
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringSlice("role", nil, "role claim, repeatable")
}
