package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/polyglot/internal/cli"
	"horse.fit/polyglot/internal/db"
	"horse.fit/polyglot/internal/globaltime"
	"horse.fit/polyglot/internal/httpapi"
	"horse.fit/polyglot/internal/langdetect"
	"horse.fit/polyglot/internal/speech"
	"horse.fit/polyglot/internal/translation"
)

const sessionSweepInterval = time.Hour

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "0.0.0.0", "Host interface to bind")
	port := fs.Int("port", 8090, "HTTP port")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 90*time.Second, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if err := validatePort(*port, "--port"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, logger, err := loadRuntime(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	dbCtx, dbCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer dbCancel()

	pool, err := db.NewPool(dbCtx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("serve failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	if err := ensureDefaultAdmin(dbCtx, pool, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("ensure default admin failed")
		fmt.Fprintf(os.Stderr, "Failed to ensure default admin: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	pipeline, registry, err := translation.NewPipelineFromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("build translation pipeline failed")
		fmt.Fprintf(os.Stderr, "Failed to configure translation providers: %v\n", err)
		return 1
	}

	speaker, err := speech.New(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("build speech synthesizer failed")
		fmt.Fprintf(os.Stderr, "Failed to configure speech provider: %v\n", err)
		return 1
	}

	warmStarted := globaltime.Now()
	langdetect.Warm()
	logger.Info().Dur("elapsed", globaltime.Now().Sub(warmStarted)).Msg("language detector loaded")

	go sweepExpiredSessions(ctx, pool, logger)

	srv := httpapi.NewServer(pool, httpapi.Services{
		Translator: pipeline,
		Speaker:    speaker,
		Providers:  registry.Describe(),
	}, logger, httpapi.Options{
		Host:               *host,
		Port:               *port,
		ReadTimeout:        *readTimeout,
		WriteTimeout:       *writeTimeout,
		ShutdownTimeout:    *shutdownTimeout,
		SessionCookie:      cfg.SessionCookieName,
		SessionTTL:         cfg.SessionTTL(),
		SessionSecure:      cfg.SessionCookieSecure,
		AllowSignup:        cfg.AllowSignup,
		CORSAllowedOrigins: cfg.CORSAllowedOriginsList(),
	})

	logger.Info().
		Str("primary_provider", cfg.PrimaryProvider).
		Str("secondary_provider", cfg.SecondaryProvider).
		Str("speech_provider", speaker.Name()).
		Dur("tier_timeout", cfg.TierTimeout).
		Msg("translation pipeline ready")

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", *host).Int("port", *port).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}

func sweepExpiredSessions(ctx context.Context, pool *db.Pool, logger zerolog.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := pool.DeleteExpiredSessions(ctx, globaltime.UTC())
			if err != nil {
				logger.Warn().Err(err).Msg("sweep expired sessions failed")
				continue
			}
			if deleted > 0 {
				logger.Info().Int64("deleted", deleted).Msg("swept expired sessions")
			}
		}
	}
}
