package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"horse.fit/polyglot/internal/auth"
	"horse.fit/polyglot/internal/config"
	"horse.fit/polyglot/internal/db"
)

// ensureDefaultAdmin seeds the first account from config when the users table
// is empty. Without DEFAULT_ADMIN_PASSWORD it only logs a warning.
func ensureDefaultAdmin(ctx context.Context, pool *db.Pool, cfg *config.Config, logger zerolog.Logger) error {
	if pool == nil || cfg == nil {
		return fmt.Errorf("ensure default admin: missing dependencies")
	}

	userCount, err := pool.CountUsers(ctx)
	if err != nil {
		return err
	}
	if userCount > 0 {
		return nil
	}

	username := auth.NormalizeUsername(cfg.DefaultAdminUser)
	password := strings.TrimSpace(cfg.DefaultAdminPassword)
	if password == "" {
		logger.Warn().
			Bool("allow_signup", cfg.AllowSignup).
			Msg("no users exist and DEFAULT_ADMIN_PASSWORD is empty; create one with `polyglot create-user`")
		return nil
	}
	if err := auth.ValidateUsername(username); err != nil {
		return fmt.Errorf("DEFAULT_ADMIN_USER: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash default admin password: %w", err)
	}

	user, err := pool.CreateUser(ctx, username, passwordHash, cfg.DefaultAdminMustChangePassword)
	if err != nil {
		if errors.Is(err, db.ErrUsernameTaken) {
			return nil
		}
		return err
	}

	logger.Warn().
		Str("username", user.Username).
		Bool("must_change_password", cfg.DefaultAdminMustChangePassword).
		Msg("created default admin user")

	return nil
}
