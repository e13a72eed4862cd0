package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/repository"
	"github.com/jwalitptl/hpms-api/internal/repository/memory"
	"github.com/jwalitptl/hpms-api/internal/repository/postgres"
	"github.com/jwalitptl/hpms-api/internal/service/auth"
	jwtauth "github.com/jwalitptl/hpms-api/pkg/auth"
	"github.com/jwalitptl/hpms-api/pkg/security"
)

var demoUsers = []model.CreateUserRequest{
	{Email: "admin@healthcare.com", Password: "admin123", Role: model.RoleAdmin},
	{Email: "doctor@healthcare.com", Password: "doctor123", Role: model.RoleDoctor},
	{Email: "nurse@healthcare.com", Password: "nurse123", Role: model.RoleNurse},
	{Email: "test@healthcare.com", Password: "test1234", Role: model.RoleUser},
}

func seedCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo users if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := postgres.NewDB(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			store := postgres.NewStore(db, memory.NewTokenRepository())
			svc := auth.NewService(store.Users, store.Tokens,
				security.NewBcryptHasher(cfg.Auth.BcryptCost),
				jwtauth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry))

			created, err := seedUsers(cmd.Context(), store.Users, svc)
			if err != nil {
				return err
			}
			log.Info().Int("created", created).Msg("seed complete")
			return nil
		},
	}
}

// seedUsers registers every demo user whose email is not taken yet.
func seedUsers(ctx context.Context, users repository.UserRepository, svc *auth.Service) (int, error) {
	created := 0
	for _, u := range demoUsers {
		_, err := users.GetByEmail(ctx, u.Email)
		if err == nil {
			log.Info().Str("email", u.Email).Msg("user exists, skipping")
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return created, fmt.Errorf("lookup %s: %w", u.Email, err)
		}

		req := u
		if _, err := svc.Register(ctx, &req); err != nil {
			return created, fmt.Errorf("create %s: %w", u.Email, err)
		}
		log.Info().Str("email", u.Email).Str("role", u.Role).Msg("user created")
		created++
	}
	return created, nil
}
