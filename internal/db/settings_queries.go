package db

import (
	"context"
	"fmt"
	"time"

	"horse.fit/polyglot/internal/language"
)

const (
	DefaultSourceLanguage = "en"
	DefaultTargetLanguage = "es"
)

type UserSettingsRecord struct {
	UserID         int64     `json:"user_id"`
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	SpeakResults   bool      `json:"speak_results"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p *Pool) EnsureUserSettings(ctx context.Context, userID int64) (*UserSettingsRecord, error) {
	const ensureQ = `
INSERT INTO polyglot.user_settings (user_id, source_language, target_language, speak_results, updated_at)
VALUES ($1, $2, $3, false, now())
ON CONFLICT (user_id) DO NOTHING
`

	if _, err := p.Exec(ctx, ensureQ, userID, DefaultSourceLanguage, DefaultTargetLanguage); err != nil {
		return nil, fmt.Errorf("ensure user settings row: %w", err)
	}

	return p.GetUserSettings(ctx, userID)
}

func (p *Pool) GetUserSettings(ctx context.Context, userID int64) (*UserSettingsRecord, error) {
	const q = `
SELECT
	user_id,
	source_language,
	target_language,
	speak_results,
	updated_at
FROM polyglot.user_settings
WHERE user_id = $1
LIMIT 1
`

	var row UserSettingsRecord
	if err := p.QueryRow(ctx, q, userID).Scan(
		&row.UserID,
		&row.SourceLanguage,
		&row.TargetLanguage,
		&row.SpeakResults,
		&row.UpdatedAt,
	); err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query user settings: %w", err)
	}

	row.SourceLanguage = NormalizeSettingsLanguage(row.SourceLanguage, DefaultSourceLanguage, true)
	row.TargetLanguage = NormalizeSettingsLanguage(row.TargetLanguage, DefaultTargetLanguage, false)
	return &row, nil
}

func (p *Pool) UpsertUserSettings(
	ctx context.Context,
	userID int64,
	sourceLanguage string,
	targetLanguage string,
	speakResults bool,
) (*UserSettingsRecord, error) {
	const q = `
INSERT INTO polyglot.user_settings (
	user_id,
	source_language,
	target_language,
	speak_results,
	updated_at
)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (user_id)
DO UPDATE SET
	source_language = EXCLUDED.source_language,
	target_language = EXCLUDED.target_language,
	speak_results = EXCLUDED.speak_results,
	updated_at = EXCLUDED.updated_at
RETURNING
	user_id,
	source_language,
	target_language,
	speak_results,
	updated_at
`

	var row UserSettingsRecord
	if err := p.QueryRow(
		ctx,
		q,
		userID,
		NormalizeSettingsLanguage(sourceLanguage, DefaultSourceLanguage, true),
		NormalizeSettingsLanguage(targetLanguage, DefaultTargetLanguage, false),
		speakResults,
	).Scan(
		&row.UserID,
		&row.SourceLanguage,
		&row.TargetLanguage,
		&row.SpeakResults,
		&row.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("upsert user settings: %w", err)
	}
	return &row, nil
}

// NormalizeSettingsLanguage maps a stored or submitted code onto the language
// table, falling back to the default for unknown values. Source preferences
// may also be "auto".
func NormalizeSettingsLanguage(raw, fallback string, allowAuto bool) string {
	if allowAuto && language.IsAuto(raw) && raw != "" {
		return language.Auto
	}
	if entry, ok := language.Lookup(raw); ok {
		return entry.Code
	}
	return fallback
}
