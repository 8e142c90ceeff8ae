package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deep-platform/deep-api/internal/models"
	"github.com/deep-platform/deep-api/internal/service"
)

func newTokenCmd(load configLoader) *cobra.Command {
	var userID, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			parsed, ok := models.ParseRole(role)
			if !ok {
				return fmt.Errorf("unknown role %q", role)
			}
			identity := service.NewIdentityService(service.IdentityConfig{
				Secret:   cfg.JWT.Secret,
				Issuer:   cfg.JWT.Issuer,
				Audience: cfg.JWT.Audience,
				TTL:      cfg.JWT.Expiration,
			})
			token, _, err := identity.Issue(userID, parsed)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id carried in the token")
	cmd.Flags().StringVar(&role, "role", string(models.RoleViewer), "viewer, moderator, admin or superadmin")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
