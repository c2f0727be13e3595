package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/labstack/echo/v4"

	"horse.fit/polyglot/internal/auth"
	"horse.fit/polyglot/internal/db"
	"horse.fit/polyglot/internal/globaltime"
)

const (
	defaultSessionTouchInterval = time.Minute
	principalContextKey         = "auth.principal"
)

type authPrincipal struct {
	SessionID string
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

type authUserResponse struct {
	UserID             int64      `json:"user_id"`
	UserUUID           string     `json:"user_uuid,omitempty"`
	Username           string     `json:"username"`
	MustChangePassword bool       `json:"must_change_password"`
	CreatedAt          time.Time  `json:"created_at"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authStore interface {
	GetSession(ctx context.Context, sessionID string) (*db.AuthSession, error)
	DeleteSession(ctx context.Context, sessionID string) error
	TouchSession(ctx context.Context, sessionID string, seenAt time.Time) error
	CreateUser(ctx context.Context, username, passwordHash string, mustChangePassword bool) (*db.AuthUser, error)
	GetUserByUsername(ctx context.Context, username string) (*db.AuthUser, error)
	GetUserByID(ctx context.Context, userID int64) (*db.AuthUser, error)
	CreateSession(ctx context.Context, userID int64, expiresAt, now time.Time) (string, error)
	SetUserLastLogin(ctx context.Context, userID int64, loginAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	EnsureUserSettings(ctx context.Context, userID int64) (*db.UserSettingsRecord, error)
	UpsertUserSettings(ctx context.Context, userID int64, sourceLanguage, targetLanguage string, speakResults bool) (*db.UserSettingsRecord, error)
	ChangeUserPassword(ctx context.Context, userID int64, passwordHash, keepSessionID string) (int64, error)
}

func (s *Server) authDataStore() authStore {
	if s == nil {
		return nil
	}
	if s.authStore != nil {
		return s.authStore
	}
	if s.pool == nil {
		return nil
	}
	return s.pool
}

func (s *Server) requireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c == nil {
				return unauthorizedResponse(c)
			}
			store := s.authDataStore()
			if store == nil {
				return internalError(c, "Failed to authorize request")
			}

			sessionID, found := s.sessionIDFromCookie(c)
			if !found {
				return unauthorizedResponse(c)
			}

			session, err := store.GetSession(c.Request().Context(), sessionID)
			if err != nil {
				if errors.Is(err, db.ErrNoRows) {
					s.clearSessionCookie(c)
					return unauthorizedResponse(c)
				}
				s.logger.Error().Err(err).Msg("session lookup failed")
				return internalError(c, "Failed to authorize request")
			}

			now := globaltime.UTC()
			if !session.ExpiresAt.After(now) {
				_ = store.DeleteSession(c.Request().Context(), session.SessionID)
				s.clearSessionCookie(c)
				return unauthorizedResponse(c)
			}

			if now.Sub(session.LastSeenAt) >= defaultSessionTouchInterval {
				_ = store.TouchSession(c.Request().Context(), session.SessionID, now)
			}

			c.Set(principalContextKey, authPrincipal{
				SessionID: session.SessionID,
				UserID:    session.UserID,
				Username:  session.Username,
				ExpiresAt: session.ExpiresAt.UTC(),
			})

			return next(c)
		}
	}
}

func (s *Server) handleLogin(c echo.Context) error {
	store := s.authDataStore()
	if store == nil {
		return internalError(c, "Failed to process login")
	}

	var req credentialsRequest
	if err := bindValidated(c, schemaLogin, &req); err != nil {
		return s.requestFailure(c, err)
	}

	username := auth.NormalizeUsername(req.Username)
	if username == "" {
		return failValidation(c, map[string]string{"username": "is required"})
	}

	user, err := store.GetUserByUsername(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return fail(c, http.StatusUnauthorized, "Invalid username or password", nil)
		}
		s.logger.Error().Err(err).Str("username", username).Msg("login lookup failed")
		return internalError(c, "Failed to process login")
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		return fail(c, http.StatusUnauthorized, "Invalid username or password", nil)
	}

	return s.startSession(c, store, user, http.StatusOK)
}

func (s *Server) handleSignup(c echo.Context) error {
	if !s.opts.AllowSignup {
		return fail(c, http.StatusForbidden, "Signup is disabled", nil)
	}
	store := s.authDataStore()
	if store == nil {
		return internalError(c, "Failed to process signup")
	}

	var req credentialsRequest
	if err := bindValidated(c, schemaSignup, &req); err != nil {
		return s.requestFailure(c, err)
	}

	username := auth.NormalizeUsername(req.Username)
	fieldErrors := map[string]string{}
	if err := auth.ValidateUsername(username); err != nil {
		fieldErrors["username"] = err.Error()
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		fieldErrors["password"] = err.Error()
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("hash signup password failed")
		return internalError(c, "Failed to process signup")
	}

	user, err := store.CreateUser(c.Request().Context(), username, hash, false)
	if err != nil {
		if errors.Is(err, db.ErrUsernameTaken) {
			return fail(c, http.StatusConflict, "Username is already taken", map[string]any{
				"validation_errors": map[string]string{"username": "is already taken"},
			})
		}
		s.logger.Error().Err(err).Str("username", username).Msg("create user failed")
		return internalError(c, "Failed to process signup")
	}

	s.logger.Info().Str("username", user.Username).Int64("user_id", user.UserID).Msg("user signed up")
	return s.startSession(c, store, user, http.StatusCreated)
}

// startSession issues a session cookie for an authenticated user.
func (s *Server) startSession(c echo.Context, store authStore, user *db.AuthUser, status int) error {
	settings, err := store.EnsureUserSettings(c.Request().Context(), user.UserID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.UserID).Msg("ensure settings failed")
		return internalError(c, "Failed to load settings")
	}

	now := globaltime.UTC()
	if _, cleanupErr := store.DeleteExpiredSessions(c.Request().Context(), now); cleanupErr != nil {
		s.logger.Warn().Err(cleanupErr).Msg("delete expired sessions failed")
	}

	expiresAt := s.sessionExpiry(now)
	sessionID, err := store.CreateSession(c.Request().Context(), user.UserID, expiresAt, now)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.UserID).Msg("create session failed")
		return internalError(c, "Failed to process login")
	}

	if err := store.SetUserLastLogin(c.Request().Context(), user.UserID, now); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.UserID).Msg("update last login failed")
	}
	nowCopy := now
	user.LastLoginAt = &nowCopy

	s.setSessionCookie(c, sessionID, expiresAt)
	return successWithStatus(c, status, map[string]any{
		"user":     buildAuthUserResponse(user),
		"settings": buildSettingsResponse(settings),
		"session": map[string]any{
			"session_id": sessionID,
			"expires_at": expiresAt.UTC(),
		},
		"redirect": safeRedirectTarget(c.QueryParam("redirect")),
	})
}

func (s *Server) handleLogout(c echo.Context) error {
	store := s.authDataStore()
	if sessionID, found := s.sessionIDFromCookie(c); found {
		if store != nil {
			_ = store.DeleteSession(c.Request().Context(), sessionID)
		}
	}
	s.clearSessionCookie(c)
	return success(c, map[string]any{"logged_out": true})
}

func (s *Server) handleMe(c echo.Context) error {
	store := s.authDataStore()
	if store == nil {
		return internalError(c, "Failed to load user")
	}

	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	user, err := store.GetUserByID(c.Request().Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return unauthorizedResponse(c)
		}
		s.logger.Error().Err(err).Int64("user_id", principal.UserID).Msg("load me user failed")
		return internalError(c, "Failed to load user")
	}

	settings, err := store.EnsureUserSettings(c.Request().Context(), principal.UserID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", principal.UserID).Msg("load me settings failed")
		return internalError(c, "Failed to load settings")
	}

	return success(c, map[string]any{
		"user":     buildAuthUserResponse(user),
		"settings": buildSettingsResponse(settings),
	})
}

// requestFailure turns a bindValidated error into a response.
func (s *Server) requestFailure(c echo.Context, err error) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return failValidation(c, reqErr.fields)
	}
	s.logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request validation failed")
	return internalError(c, "Failed to validate request")
}

func unauthorizedResponse(c echo.Context) error {
	if c == nil {
		return fmt.Errorf("authentication required")
	}
	return fail(c, http.StatusUnauthorized, "Authentication required", nil)
}

func buildAuthUserResponse(row *db.AuthUser) authUserResponse {
	if row == nil {
		return authUserResponse{}
	}
	return authUserResponse{
		UserID:             row.UserID,
		UserUUID:           row.UserUUID,
		Username:           row.Username,
		MustChangePassword: row.MustChangePassword,
		CreatedAt:          row.CreatedAt.UTC(),
		LastLoginAt:        row.LastLoginAt,
	}
}

func principalFromContext(c echo.Context) (authPrincipal, bool) {
	if c == nil {
		return authPrincipal{}, false
	}
	value := c.Get(principalContextKey)
	principal, ok := value.(authPrincipal)
	if !ok {
		return authPrincipal{}, false
	}
	return principal, true
}

func (s *Server) sessionIDFromCookie(c echo.Context) (string, bool) {
	if c == nil {
		return "", false
	}

	cookie, err := c.Cookie(s.opts.SessionCookie)
	if err != nil || cookie == nil {
		return "", false
	}

	sessionID := strings.TrimSpace(cookie.Value)
	if sessionID == "" {
		return "", false
	}
	if !isUUID(sessionID) {
		s.clearSessionCookie(c)
		return "", false
	}
	return sessionID, true
}

func (s *Server) setSessionCookie(c echo.Context, sessionID string, expiresAt time.Time) {
	if c == nil {
		return
	}

	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}

	c.SetCookie(&http.Cookie{
		Name:     s.opts.SessionCookie,
		Value:    strings.TrimSpace(sessionID),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SessionSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt.UTC(),
		MaxAge:   maxAge,
	})
}

func (s *Server) clearSessionCookie(c echo.Context) {
	if c == nil {
		return
	}

	c.SetCookie(&http.Cookie{
		Name:     s.opts.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SessionSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  globaltime.UTC().Add(-1 * time.Hour),
	})
}

func (s *Server) sessionExpiry(now time.Time) time.Time {
	if s == nil {
		return now.UTC()
	}
	ttl := s.opts.SessionTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return now.UTC().Add(ttl)
}

// safeRedirectTarget accepts only same-origin absolute paths.
func safeRedirectTarget(raw string) string {
	target := strings.TrimSpace(raw)
	// Browsers drop tab, CR and LF from URLs, so "/\t/host" would become "//host".
	if target == "" || strings.ContainsFunc(target, unicode.IsControl) {
		return translatorPath
	}
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return translatorPath
	}
	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return translatorPath
	}
	if target == loginPath || strings.HasPrefix(target, loginPath+"?") {
		return translatorPath
	}
	return target
}

func isUUID(value string) bool {
	if len(value) != 36 {
		return false
	}

	for idx, ch := range value {
		switch idx {
		case 8, 13, 18, 23:
			if ch != '-' {
				return false
			}
			continue
		}

		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}
