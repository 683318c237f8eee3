package db

import (
	"context"
	"strings"

	"crewshift/internal/domain/apperr"
	"crewshift/internal/domain/auth"
	"crewshift/internal/platform/config"
)

// Seed creates one user per configured seed email. Existing users are left
// alone, so it is safe to run on every start.
func Seed(ctx context.Context, users *auth.Service, cfg config.Config) error {
	password := cfg.Seed.Password
	if strings.TrimSpace(password) == "" {
		return nil
	}
	seeds := []struct {
		email string
		name  string
		role  auth.Role
	}{
		{cfg.Seed.ManagerEmail, "Seed Manager", auth.RoleManager},
		{cfg.Seed.WorkerEmail, "Seed Worker", auth.RoleWorker},
		{cfg.Seed.ClientEmail, "Seed Client", auth.RoleClient},
	}
	for _, seed := range seeds {
		if err := ensureUser(ctx, users, seed.email, seed.name, password, seed.role); err != nil {
			return err
		}
	}
	return nil
}

func ensureUser(ctx context.Context, users *auth.Service, email, name, password string, role auth.Role) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	_, err := users.Store.FindUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		return err
	}
	_, err = users.Register(ctx, email, name, password, role)
	return err
}
