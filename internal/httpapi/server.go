package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/polyglot/internal/db"
	"horse.fit/polyglot/internal/globaltime"
	"horse.fit/polyglot/internal/speech"
	"horse.fit/polyglot/internal/translation"
)

// Translator runs the tiered fallback chain. *translation.Pipeline satisfies it.
type Translator interface {
	Translate(ctx context.Context, req translation.Request) translation.Result
}

type Options struct {
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	SessionCookie      string
	SessionTTL         time.Duration
	SessionSecure      bool
	AllowSignup        bool
	CORSAllowedOrigins []string
}

// Services bundles the domain backends the handlers call into.
type Services struct {
	Translator Translator
	Speaker    speech.Synthesizer
	Providers  []translation.ProviderInfo
}

type Server struct {
	pool       *db.Pool
	authStore  authStore
	translator Translator
	speaker    speech.Synthesizer
	providers  []translation.ProviderInfo
	logger     zerolog.Logger
	opts       Options
}

func NewServer(pool *db.Pool, services Services, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 90 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	sessionCookie := strings.TrimSpace(opts.SessionCookie)
	if sessionCookie == "" {
		sessionCookie = "polyglot_session"
	}
	sessionTTL := opts.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}

	return &Server{
		pool:       pool,
		translator: services.Translator,
		speaker:    services.Speaker,
		providers:  append([]translation.ProviderInfo(nil), services.Providers...),
		logger:     logger,
		opts: Options{
			Host:               host,
			Port:               port,
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			ShutdownTimeout:    shutdownTimeout,
			SessionCookie:      sessionCookie,
			SessionTTL:         sessionTTL,
			SessionSecure:      opts.SessionSecure,
			AllowSignup:        opts.AllowSignup,
			CORSAllowedOrigins: append([]string(nil), opts.CORSAllowedOrigins...),
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.authDataStore() == nil || s.translator == nil {
		return fmt.Errorf("server is not initialized")
	}

	e, err := s.router()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("polyglot web server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("polyglot web server stopped")
	return nil
}

func (s *Server) router() (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if len(s.opts.CORSAllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     s.opts.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           3600,
		}))
	}
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))
	e.Use(s.pageGate())

	assetsSub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return nil, fmt.Errorf("load embedded assets: %w", err)
	}
	pages := map[string][]byte{}
	for _, name := range []string{"index.html", "login.html", "translator.html"} {
		raw, err := fs.ReadFile(assetsSub, name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		pages[name] = raw
	}
	page := func(name string) echo.HandlerFunc {
		return func(c echo.Context) error {
			return c.Blob(http.StatusOK, "text/html; charset=utf-8", pages[name])
		}
	}

	e.GET("/", page("index.html"))
	e.GET("/login", page("login.html"))
	e.GET("/translator", page("translator.html"))
	e.GET("/assets/*", echo.WrapHandler(http.StripPrefix("/assets/", http.FileServer(http.FS(assetsSub)))))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/languages", s.handleLanguages)
	api.POST("/auth/login", s.handleLogin)
	api.POST("/auth/logout", s.handleLogout)
	if s.opts.AllowSignup {
		api.POST("/auth/signup", s.handleSignup)
	}

	requireAuth := s.requireAuth()
	api.GET("/me", s.handleMe, requireAuth)
	api.GET("/me/settings", s.handleGetMySettings, requireAuth)
	api.PUT("/me/settings", s.handlePutMySettings, requireAuth)
	api.POST("/translate", s.handleTranslate, requireAuth)
	api.POST("/speech", s.handleSpeech, requireAuth)

	return e, nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	isAPI := strings.HasPrefix(c.Request().URL.Path, "/api/")
	if isAPI {
		if status >= 500 {
			_ = internalError(c, "Internal server error")
			return
		}
		_ = fail(c, status, message, nil)
		return
	}

	_ = c.String(status, message)
}

func (s *Server) handleHealth(c echo.Context) error {
	database := "unconfigured"
	if s.pool != nil {
		database = "ok"
		if err := s.pool.Ping(c.Request().Context()); err != nil {
			s.logger.Warn().Err(err).Msg("health database ping failed")
			database = "unavailable"
		}
	}

	speaker := ""
	if s.speaker != nil {
		speaker = s.speaker.Name()
	}

	return success(c, map[string]any{
		"service":   "polyglot",
		"time":      globaltime.UTC(),
		"database":  database,
		"providers": s.providers,
		"speech":    speaker,
	})
}

func (s *Server) handleLanguages(c echo.Context) error {
	return success(c, map[string]any{
		"source":             translation.SourceLanguageOptions(),
		"target":             translation.TargetLanguageOptions(),
		"dictionary_phrases": translation.DefaultDictionary().Phrases(),
	})
}
