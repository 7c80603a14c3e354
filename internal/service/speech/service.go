package speech

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finpsyche/advisor/backend/internal/advice"
	"github.com/finpsyche/advisor/backend/internal/analysis/emotion"
	"github.com/finpsyche/advisor/backend/internal/config"
	"github.com/finpsyche/advisor/backend/internal/model/speech"
)

// AudioPath prefixes the URL under which cached clips are served.
const AudioPath = "/api/speech/audio/"

// Service speaks advice and keeps the resulting clips for download.
type Service struct {
	synth Synthesizer
	cache *AudioCache
	voice string
}

// NewService wraps synth with an audio cache sized from cfg.
func NewService(synth Synthesizer, cfg config.SpeechConfig) *Service {
	return &Service{
		synth: synth,
		cache: NewAudioCache(cfg.CacheSize),
		voice: cfg.Voice,
	}
}

// NewServiceFromConfig builds a Service backed by a WSClient.
func NewServiceFromConfig(cfg config.SpeechConfig) (*Service, error) {
	if _, _, err := resolveCredentials(cfg); err != nil {
		return nil, err
	}
	return NewService(NewWSClient(cfg), cfg), nil
}

// SynthesizeAdvice cleans text exactly like the chat reply, speaks it with an
// emotion-appropriate style and caches the clip. voice may be empty.
func (s *Service) SynthesizeAdvice(ctx context.Context, sessionID, text, voice string, result emotion.Result) (*speech.TTSResponse, error) {
	cleaned := advice.Clean(text)

	if voice == "" {
		voice = s.voice
	}
	req := &speech.TTSRequest{
		SessionID: sessionID,
		Text:      cleaned,
		Voice:     voice,
	}
	if enable, style, scale := ComputeEmotionParameters(voice, result); enable {
		req.Emotion = style
		req.EmotionScale = scale
	}

	resp, err := s.synth.Synthesize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("synthesize advice: %w", err)
	}

	resp.Text = cleaned
	resp.AudioID = uuid.NewString()
	resp.AudioURL = AudioPath + resp.AudioID
	s.cache.Put(resp.AudioID, resp)
	return resp, nil
}

// Audio returns a cached clip.
func (s *Service) Audio(id string) (*speech.TTSResponse, bool) {
	return s.cache.Get(id)
}
