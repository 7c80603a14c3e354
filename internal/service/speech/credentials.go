package speech

import (
	"errors"
	"strings"

	"github.com/finpsyche/advisor/backend/internal/config"
)

// ErrMissingCredentials is returned when the TTS app id or token is unset.
var ErrMissingCredentials = errors.New("speech config is missing SPEECH_APP_ID or SPEECH_ACCESS_TOKEN")

func resolveCredentials(cfg config.SpeechConfig) (string, string, error) {
	appID := strings.TrimSpace(cfg.AppID)
	token := strings.TrimSpace(cfg.AccessToken)
	if appID == "" || token == "" {
		return "", "", ErrMissingCredentials
	}
	return appID, token, nil
}
