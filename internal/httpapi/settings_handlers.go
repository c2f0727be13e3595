package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"horse.fit/polyglot/internal/auth"
	"horse.fit/polyglot/internal/db"
	"horse.fit/polyglot/internal/language"
)

type userSettingsResponse struct {
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	SpeakResults   bool   `json:"speak_results"`
}

// settingsUpdate fields are pointers so omitted keys keep their stored value.
type settingsUpdate struct {
	SourceLanguage  *string `json:"source_language"`
	TargetLanguage  *string `json:"target_language"`
	SpeakResults    *bool   `json:"speak_results"`
	Password        *string `json:"password"`
	CurrentPassword *string `json:"current_password"`
}

func (s *Server) handleGetMySettings(c echo.Context) error {
	store := s.authDataStore()
	if store == nil {
		return internalError(c, "Failed to load user settings")
	}

	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	settings, err := store.EnsureUserSettings(c.Request().Context(), principal.UserID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", principal.UserID).Msg("query user settings failed")
		return internalError(c, "Failed to load user settings")
	}

	return success(c, map[string]any{
		"settings": buildSettingsResponse(settings),
	})
}

func (s *Server) handlePutMySettings(c echo.Context) error {
	store := s.authDataStore()
	if store == nil {
		return internalError(c, "Failed to load user settings")
	}

	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	var update settingsUpdate
	if err := bindValidated(c, schemaSettings, &update); err != nil {
		return s.requestFailure(c, err)
	}

	current, err := store.EnsureUserSettings(c.Request().Context(), principal.UserID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", principal.UserID).Msg("load current settings failed")
		return internalError(c, "Failed to load user settings")
	}

	source := current.SourceLanguage
	target := current.TargetLanguage
	speak := current.SpeakResults
	fieldErrors := map[string]string{}

	if update.SourceLanguage != nil {
		if language.IsAuto(*update.SourceLanguage) {
			source = language.Auto
		} else if entry, found := language.Lookup(*update.SourceLanguage); found {
			source = entry.Code
		} else {
			fieldErrors["source_language"] = "is not supported"
		}
	}
	if update.TargetLanguage != nil {
		if entry, found := language.Lookup(*update.TargetLanguage); found {
			target = entry.Code
		} else {
			fieldErrors["target_language"] = "is not supported"
		}
	}
	if update.SpeakResults != nil {
		speak = *update.SpeakResults
	}
	if update.Password != nil {
		if err := auth.ValidatePassword(*update.Password); err != nil {
			fieldErrors["password"] = err.Error()
		}
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	var passwordHash string
	if update.Password != nil {
		user, err := store.GetUserByID(c.Request().Context(), principal.UserID)
		if err != nil {
			s.logger.Error().Err(err).Int64("user_id", principal.UserID).Msg("load user for password change failed")
			return internalError(c, "Failed to update password")
		}
		if update.CurrentPassword == nil || !auth.VerifyPassword(*update.CurrentPassword, user.PasswordHash) {
			return fail(c, http.StatusForbidden, "Current password is incorrect", nil)
		}
		passwordHash, err = auth.HashPassword(*update.Password)
		if err != nil {
			s.logger.Error().Err(err).Int64("user_id", principal.UserID).Msg("hash password failed")
			return internalError(c, "Failed to update password")
		}
	}

	updated, err := store.UpsertUserSettings(c.Request().Context(), principal.UserID, source, target, speak)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", principal.UserID).Msg("update user settings failed")
		return internalError(c, "Failed to update user settings")
	}

	// Settings are saved before the password so a failed settings write leaves
	// credentials untouched.
	if passwordHash != "" {
		revoked, err := store.ChangeUserPassword(c.Request().Context(), principal.UserID, passwordHash, principal.SessionID)
		if err != nil {
			s.logger.Error().Err(err).Int64("user_id", principal.UserID).Msg("update password failed")
			return internalError(c, "Settings saved but the password was not changed")
		}
		s.logger.Info().Int64("user_id", principal.UserID).Int64("revoked_sessions", revoked).Msg("password changed")
	}

	return success(c, map[string]any{
		"settings": buildSettingsResponse(updated),
	})
}

func buildSettingsResponse(row *db.UserSettingsRecord) userSettingsResponse {
	if row == nil {
		return userSettingsResponse{
			SourceLanguage: db.DefaultSourceLanguage,
			TargetLanguage: db.DefaultTargetLanguage,
		}
	}
	return userSettingsResponse{
		SourceLanguage: db.NormalizeSettingsLanguage(row.SourceLanguage, db.DefaultSourceLanguage, true),
		TargetLanguage: db.NormalizeSettingsLanguage(row.TargetLanguage, db.DefaultTargetLanguage, false),
		SpeakResults:   row.SpeakResults,
	}
}
