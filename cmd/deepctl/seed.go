package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deep-platform/deep-api/internal/models"
	"github.com/deep-platform/deep-api/internal/repository"
	"github.com/deep-platform/deep-api/internal/service"
)

func seedService(e *env) *service.SeedService {
	audit := service.NewAuditRecorder(repository.NewAuditRepository(e.db), nil, e.logger)
	return service.NewSeedService(
		repository.NewProfileRepository(e.db),
		repository.NewMentorRepository(e.db),
		repository.NewInterestRepository(e.db),
		repository.NewPostRepository(e.db),
		audit,
		e.logger,
	)
}

func newSeedCmd(load configLoader) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load profiles, mentors, interests and posts from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			fixtures, err := service.LoadFixtures(f)
			if err != nil {
				return err
			}

			e, err := openEnv(load)
			if err != nil {
				return err
			}
			defer e.Close()

			summary, err := seedService(e).Apply(cmd.Context(), fixtures)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d profiles, %d mentors, %d interests, %d posts\n",
				summary.Profiles, summary.Mentors, summary.Interests, summary.Posts)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "fixtures.yaml", "fixtures file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSeedAdminCmd(load configLoader) *cobra.Command {
	var id, name, role string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create or promote an administrator profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, ok := models.ParseRole(role)
			if !ok {
				return fmt.Errorf("unknown role %q", role)
			}

			e, err := openEnv(load)
			if err != nil {
				return err
			}
			defer e.Close()

			profile, err := seedService(e).SeedAdmin(cmd.Context(), id, name, parsed)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "profile %s is now %s\n", profile.ID, profile.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "profile id (uuid)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "moderator, admin or superadmin")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
