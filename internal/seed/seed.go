// Package seed creates the accounts a fresh installation needs.
package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	appModels "github.com/yigit/internflow/internal/app/models"
	appRepos "github.com/yigit/internflow/internal/app/repositories"
	"github.com/yigit/internflow/internal/config"
	"github.com/yigit/internflow/internal/pkg/apperrors"
)

// DemoDomain is the mail domain of the demo accounts
const DemoDomain = "internflow.local"

type account struct {
	email     string
	password  string
	firstName string
	lastName  string
	roles     []appModels.Role
}

// demoAccounts covers one holder of every workflow role
func demoAccounts(password string) []account {
	return []account{
		{"student@" + DemoDomain, password, "Deniz", "Student", []appModels.Role{appModels.RoleStudent}},
		{"advisor@" + DemoDomain, password, "Ece", "Advisor", []appModels.Role{appModels.RoleFacultyAdvisor}},
		{"department@" + DemoDomain, password, "Kaan", "Coordinator", []appModels.Role{appModels.RoleDepartmentCoordinator}},
		{"university@" + DemoDomain, password, "Selin", "Coordinator", []appModels.Role{appModels.RoleUniversityCoordinator}},
	}
}

// CreateDefaultData creates the configured admin and, when a demo password is
// set, one demo account per role. Existing accounts are left untouched.
func CreateDefaultData(ctx context.Context, users appRepos.UserStore, cfg *config.Config, lgr zerolog.Logger) error {
	var accounts []account
	if cfg.Seed.AdminEmail != "" && cfg.Seed.AdminPassword != "" {
		accounts = append(accounts, account{
			email:     cfg.Seed.AdminEmail,
			password:  cfg.Seed.AdminPassword,
			firstName: "System",
			lastName:  "Admin",
			roles:     []appModels.Role{appModels.RoleAdmin},
		})
	}
	if cfg.Seed.DemoPassword != "" {
		accounts = append(accounts, demoAccounts(cfg.Seed.DemoPassword)...)
	}
	if len(accounts) == 0 {
		lgr.Info().Msg("No seed accounts configured")
		return nil
	}

	var finalErr error // collect errors without stopping the process
	for _, a := range accounts {
		created, err := ensureUser(ctx, users, a)
		if err != nil {
			lgr.Error().Err(err).Str("email", a.email).Msg("Error creating seed user")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if created {
			lgr.Info().Str("email", a.email).Msg("Seed user created")
		}
	}
	return finalErr
}

func ensureUser(ctx context.Context, users appRepos.UserStore, a account) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(a.email))

	if _, err := users.GetUserByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	_, err = users.CreateUser(ctx, &appModels.User{
		Email:     email,
		Password:  string(hash),
		FirstName: a.firstName,
		LastName:  a.lastName,
		IsActive:  true,
		Roles:     a.roles,
	})
	if errors.Is(err, apperrors.ErrConflict) {
		return false, nil
	}
	return err == nil, err
}
