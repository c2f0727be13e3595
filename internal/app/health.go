package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"horse.fit/polyglot/internal/cli"
	"horse.fit/polyglot/internal/translation"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Second, "Database ping timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, err := loadRuntime(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel, pool, err := connectPool(*timeout, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}

	registry, err := translation.NewRegistryFromConfig(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("provider configuration check failed")
		fmt.Fprintf(os.Stderr, "Provider configuration invalid: %v\n", err)
		return 1
	}

	logger.Info().
		Dur("timeout", *timeout).
		Strs("providers", registry.ProviderNames()).
		Msg("health check passed")
	fmt.Println("ok: database ping successful")
	fmt.Printf("ok: primary=%s secondary=%s speech=%s\n", cfg.PrimaryProvider, cfg.SecondaryProvider, cfg.SpeechProvider)
	if err := writeTable([]string{"PROVIDER", "MODEL", "LANGUAGES"}, providerRows(registry.Describe())); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		return 1
	}
	if cfg.GeminiAPIKey == "" && cfg.PrimaryProvider == "gemini" {
		fmt.Println("warn: GEMINI_API_KEY is empty; translations will start at the secondary service")
	}
	return 0
}

func providerRows(infos []translation.ProviderInfo) [][]string {
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		model := info.Model
		if model == "" {
			model = "-"
		}
		rows = append(rows, []string{info.Name, model, strconv.Itoa(info.Languages)})
	}
	return rows
}
