package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/polyglot/internal/auth"
	"horse.fit/polyglot/internal/cli"
	"horse.fit/polyglot/internal/db"
)

// passwordEnvVar lets scripts pass the password without exposing it in argv.
const passwordEnvVar = "POLYGLOT_NEW_USER_PASSWORD"

func runCreateUser(args []string) int {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	username := fs.String("username", "", "Login name (3-64 chars of a-z, 0-9, '.', '_', '-')")
	password := fs.String("password", "", "Password; defaults to $"+passwordEnvVar)
	mustChange := fs.Bool("must-change-password", false, "Ask the user to pick a new password after login")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	normalized := auth.NormalizeUsername(*username)
	if err := auth.ValidateUsername(normalized); err != nil {
		fmt.Fprintf(os.Stderr, "--username: %v\n", err)
		return 2
	}

	cfg, logger, err := loadRuntime(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	secret := *password
	if strings.TrimSpace(secret) == "" {
		secret = os.Getenv(passwordEnvVar)
	}
	if err := auth.ValidatePassword(secret); err != nil {
		fmt.Fprintf(os.Stderr, "password: %v\n", err)
		return 2
	}

	hash, err := auth.HashPassword(secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		return 1
	}

	ctx, cancel, pool, err := connectPool(*timeout, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	user, err := pool.CreateUser(ctx, normalized, hash, *mustChange)
	if err != nil {
		if errors.Is(err, db.ErrUsernameTaken) {
			fmt.Fprintf(os.Stderr, "User %s already exists\n", normalized)
			return 1
		}
		logger.Error().Err(err).Str("username", normalized).Msg("create user failed")
		fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
		return 1
	}

	logger.Info().Str("username", user.Username).Int64("user_id", user.UserID).Msg("created user")
	fmt.Printf("created user %s (id=%d)\n", user.Username, user.UserID)
	return 0
}
