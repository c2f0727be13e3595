package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"horse.fit/polyglot/internal/language"
	"horse.fit/polyglot/internal/speech"
	"horse.fit/polyglot/internal/translation"
)

const speechFailedMessage = "Speech synthesis failed"

type translateRequestBody struct {
	Text              string `json:"text"`
	SourceLanguage    string `json:"source_language"`
	TargetLanguage    string `json:"target_language"`
	PreferredProvider string `json:"preferred_provider"`
	Speak             bool   `json:"speak"`
}

type translateResponse struct {
	translation.Result
	SourceAudio *speech.Audio `json:"source_audio,omitempty"`
	TargetAudio *speech.Audio `json:"target_audio,omitempty"`
	SpeechError string        `json:"speech_error,omitempty"`
}

type speechRequestBody struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (s *Server) handleTranslate(c echo.Context) error {
	if s.translator == nil {
		return internalError(c, "Translation is not configured")
	}

	var body translateRequestBody
	if err := bindValidated(c, schemaTranslate, &body); err != nil {
		return s.requestFailure(c, err)
	}

	fieldErrors := map[string]string{}
	if !language.IsAuto(body.SourceLanguage) && !language.IsSupported(body.SourceLanguage) {
		fieldErrors["source_language"] = "is not supported"
	}
	if !language.IsSupported(body.TargetLanguage) {
		fieldErrors["target_language"] = "is not supported"
	}
	preferred, err := translation.ParsePreference(body.PreferredProvider)
	if err != nil {
		fieldErrors["preferred_provider"] = "is not supported"
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	req, err := translation.NewRequest(body.Text, body.SourceLanguage, body.TargetLanguage, preferred)
	if err != nil {
		field := "body"
		switch {
		case errors.Is(err, translation.ErrEmptyText):
			field = "text"
		case errors.Is(err, translation.ErrMissingTarget):
			field = "target_language"
		}
		return failValidation(c, map[string]string{field: err.Error()})
	}

	ctx := c.Request().Context()
	result := s.translator.Translate(ctx, req)
	resp := translateResponse{Result: result}

	if body.Speak {
		if s.speaker == nil {
			resp.SpeechError = "speech synthesis is not configured"
		} else {
			sourceAudio, targetAudio, err := speech.SynthesizePair(
				ctx,
				s.speaker,
				req.Text,
				result.SourceLanguage,
				result.TranslatedText,
				result.TargetLanguage,
			)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("speech_provider", s.speaker.Name()).
					Str("target_language", result.TargetLanguage).
					Msg("speech synthesis failed after translation")
				resp.SpeechError = speechFailedMessage
			} else {
				resp.SourceAudio = sourceAudio
				resp.TargetAudio = targetAudio
			}
		}
	}

	return success(c, resp)
}

func (s *Server) handleSpeech(c echo.Context) error {
	if s.speaker == nil {
		return fail(c, http.StatusServiceUnavailable, "Speech synthesis is not configured", nil)
	}

	var body speechRequestBody
	if err := bindValidated(c, schemaSpeech, &body); err != nil {
		return s.requestFailure(c, err)
	}
	if !language.IsAuto(body.Language) && !language.IsSupported(body.Language) {
		return failValidation(c, map[string]string{"language": "is not supported"})
	}

	lang := body.Language
	if entry, found := language.Lookup(body.Language); found {
		lang = entry.Code
	}

	audio, err := s.speaker.Synthesize(c.Request().Context(), body.Text, lang)
	if err != nil {
		if errors.Is(err, speech.ErrEmptyText) {
			return failValidation(c, map[string]string{"text": err.Error()})
		}
		s.logger.Warn().
			Err(err).
			Str("speech_provider", s.speaker.Name()).
			Str("language", lang).
			Msg("speech synthesis failed")
		return fail(c, http.StatusBadGateway, speechFailedMessage, nil)
	}

	return success(c, map[string]any{
		"audio": audio,
	})
}
