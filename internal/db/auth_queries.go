package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"horse.fit/polyglot/internal/auth"
)

// ErrUsernameTaken is returned when a signup collides with an existing user.
var ErrUsernameTaken = errors.New("username already exists")

type AuthUser struct {
	UserID             int64      `json:"user_id"`
	UserUUID           string     `json:"user_uuid"`
	Username           string     `json:"username"`
	PasswordHash       string     `json:"-"`
	MustChangePassword bool       `json:"must_change_password"`
	CreatedAt          time.Time  `json:"created_at"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
}

type AuthSession struct {
	SessionID          string    `json:"session_id"`
	UserID             int64     `json:"user_id"`
	Username           string    `json:"username"`
	MustChangePassword bool      `json:"must_change_password"`
	ExpiresAt          time.Time `json:"expires_at"`
	LastSeenAt         time.Time `json:"last_seen_at"`
}

const authUserColumns = `
	user_id,
	user_uuid::text,
	username,
	password_hash,
	must_change_password,
	created_at,
	last_login_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuthUser(row rowScanner) (*AuthUser, error) {
	var user AuthUser
	if err := row.Scan(
		&user.UserID,
		&user.UserUUID,
		&user.Username,
		&user.PasswordHash,
		&user.MustChangePassword,
		&user.CreatedAt,
		&user.LastLoginAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *Pool) CountUsers(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM polyglot.users`

	var count int64
	if err := p.QueryRow(ctx, q).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// CreateUser inserts the user and its default settings row in one transaction.
func (p *Pool) CreateUser(ctx context.Context, username, passwordHash string, mustChangePassword bool) (*AuthUser, error) {
	normalized := auth.NormalizeUsername(username)
	if normalized == "" {
		return nil, fmt.Errorf("username is required")
	}

	tx, err := p.BeginTx(ctx, TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin create user: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const existsQ = `SELECT EXISTS (SELECT 1 FROM polyglot.users WHERE username = $1)`
	var exists bool
	if err := tx.QueryRow(ctx, existsQ, normalized).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	q := `
INSERT INTO polyglot.users (
	username,
	password_hash,
	must_change_password,
	created_at
)
VALUES ($1, $2, $3, now())
RETURNING` + authUserColumns

	user, err := scanAuthUser(tx.QueryRow(ctx, q, normalized, strings.TrimSpace(passwordHash), mustChangePassword))
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	const settingsQ = `
INSERT INTO polyglot.user_settings (user_id, source_language, target_language, speak_results, updated_at)
VALUES ($1, $2, $3, false, now())
ON CONFLICT (user_id) DO NOTHING
`
	if _, err := tx.Exec(ctx, settingsQ, user.UserID, DefaultSourceLanguage, DefaultTargetLanguage); err != nil {
		return nil, fmt.Errorf("insert default settings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create user: %w", err)
	}
	return user, nil
}

func (p *Pool) GetUserByUsername(ctx context.Context, username string) (*AuthUser, error) {
	q := `SELECT` + authUserColumns + `FROM polyglot.users
WHERE username = $1
LIMIT 1
`

	user, err := scanAuthUser(p.QueryRow(ctx, q, auth.NormalizeUsername(username)))
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query user by username: %w", err)
	}
	return user, nil
}

func (p *Pool) GetUserByID(ctx context.Context, userID int64) (*AuthUser, error) {
	q := `SELECT` + authUserColumns + `FROM polyglot.users
WHERE user_id = $1
LIMIT 1
`

	user, err := scanAuthUser(p.QueryRow(ctx, q, userID))
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

func (p *Pool) SetUserLastLogin(ctx context.Context, userID int64, loginAt time.Time) error {
	const q = `
UPDATE polyglot.users
SET last_login_at = $2
WHERE user_id = $1
`

	tag, err := p.Exec(ctx, q, userID, loginAt.UTC())
	if err != nil {
		return fmt.Errorf("update user last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

// ChangeUserPassword stores a new hash, clears must_change_password and deletes
// every other session of the user in one transaction. It returns the number of
// revoked sessions.
func (p *Pool) ChangeUserPassword(ctx context.Context, userID int64, passwordHash, keepSessionID string) (int64, error) {
	tx, err := p.BeginTx(ctx, TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin change password: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const updateQ = `
UPDATE polyglot.users
SET
	password_hash = $2,
	must_change_password = false
WHERE user_id = $1
`
	tag, err := tx.Exec(ctx, updateQ, userID, strings.TrimSpace(passwordHash))
	if err != nil {
		return 0, fmt.Errorf("update user password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNoRows
	}

	const revokeQ = `
DELETE FROM polyglot.sessions
WHERE user_id = $1
	AND session_id::text <> $2
`
	revoked, err := tx.Exec(ctx, revokeQ, userID, strings.TrimSpace(keepSessionID))
	if err != nil {
		return 0, fmt.Errorf("revoke other sessions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit change password: %w", err)
	}
	return revoked.RowsAffected(), nil
}

func (p *Pool) CreateSession(ctx context.Context, userID int64, expiresAt, now time.Time) (string, error) {
	const q = `
INSERT INTO polyglot.sessions (
	user_id,
	expires_at,
	created_at,
	last_seen_at
)
VALUES ($1, $2, $3, $3)
RETURNING session_id::text
`

	var sessionID string
	if err := p.QueryRow(ctx, q, userID, expiresAt.UTC(), now.UTC()).Scan(&sessionID); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return sessionID, nil
}

func (p *Pool) GetSession(ctx context.Context, sessionID string) (*AuthSession, error) {
	const q = `
SELECT
	s.session_id::text,
	s.user_id,
	u.username,
	u.must_change_password,
	s.expires_at,
	s.last_seen_at
FROM polyglot.sessions s
JOIN polyglot.users u
	ON u.user_id = s.user_id
WHERE s.session_id = $1::uuid
LIMIT 1
`

	var row AuthSession
	if err := p.QueryRow(ctx, q, strings.TrimSpace(sessionID)).Scan(
		&row.SessionID,
		&row.UserID,
		&row.Username,
		&row.MustChangePassword,
		&row.ExpiresAt,
		&row.LastSeenAt,
	); err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &row, nil
}

func (p *Pool) TouchSession(ctx context.Context, sessionID string, seenAt time.Time) error {
	const q = `
UPDATE polyglot.sessions
SET last_seen_at = $2
WHERE session_id = $1::uuid
`

	tag, err := p.Exec(ctx, q, strings.TrimSpace(sessionID), seenAt.UTC())
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func (p *Pool) DeleteSession(ctx context.Context, sessionID string) error {
	const q = `
DELETE FROM polyglot.sessions
WHERE session_id = $1::uuid
`

	if _, err := p.Exec(ctx, q, strings.TrimSpace(sessionID)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (p *Pool) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	const q = `
DELETE FROM polyglot.sessions
WHERE expires_at <= $1
`

	tag, err := p.Exec(ctx, q, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
