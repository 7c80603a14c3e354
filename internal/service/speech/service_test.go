package speech

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpsyche/advisor/backend/internal/advice"
	"github.com/finpsyche/advisor/backend/internal/analysis/emotion"
	"github.com/finpsyche/advisor/backend/internal/config"
	"github.com/finpsyche/advisor/backend/internal/model/speech"
)

type recordingSynth struct {
	requests []*speech.TTSRequest
	err      error
}

func (s *recordingSynth) Synthesize(_ context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &speech.TTSResponse{SessionID: req.SessionID, AudioData: []byte("audio"), Format: "mp3"}, nil
}

func TestSynthesizeAdviceSpeaksCleanText(t *testing.T) {
	synth := &recordingSynth{}
	svc := NewService(synth, config.SpeechConfig{Voice: "en_male_glen_emo_v2_mars_bigtts", CacheSize: 4})

	raw := "personality_type: Risk-Averse\nemotion: Fear\nfinancial_advice: Start with a small SIP in a debt fund."
	resp, err := svc.SynthesizeAdvice(context.Background(), "s1", raw, "", emotion.Result{Label: emotion.Fear, Score: 0.5})
	require.NoError(t, err)

	require.Len(t, synth.requests, 1)
	req := synth.requests[0]
	assert.Equal(t, advice.Clean(raw), req.Text)
	assert.NotContains(t, req.Text, "financial_advice")
	assert.Equal(t, "en_male_glen_emo_v2_mars_bigtts", req.Voice)
	assert.Equal(t, "comfort", req.Emotion)
	assert.InDelta(t, 3.0, req.EmotionScale, 1e-6)

	assert.Equal(t, AudioPath+resp.AudioID, resp.AudioURL)
	cached, ok := svc.Audio(resp.AudioID)
	require.True(t, ok)
	assert.Equal(t, []byte("audio"), cached.AudioData)
}

func TestSynthesizeAdviceError(t *testing.T) {
	svc := NewService(&recordingSynth{err: errors.New("offline")}, config.SpeechConfig{})
	_, err := svc.SynthesizeAdvice(context.Background(), "s1", "Keep a budget every month.", "", emotion.Result{})
	assert.Error(t, err)
}

func TestNewServiceFromConfigNeedsCredentials(t *testing.T) {
	_, err := NewServiceFromConfig(config.SpeechConfig{})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestComputeEmotionParameters(t *testing.T) {
	const voice = "en_female_candice_emo_v2_mars_bigtts"

	enable, style, scale := ComputeEmotionParameters(voice, emotion.Result{Label: emotion.Stress, Score: 1})
	assert.True(t, enable)
	assert.Equal(t, "comfort", style)
	assert.InDelta(t, 5.0, scale, 1e-6)

	enable, _, _ = ComputeEmotionParameters(voice, emotion.Result{Label: emotion.Calm, Score: 0.9})
	assert.False(t, enable)

	enable, _, _ = ComputeEmotionParameters("plain_voice", emotion.Result{Label: emotion.Fear, Score: 0.9})
	assert.False(t, enable)

	enable, _, _ = ComputeEmotionParameters(voice, emotion.Result{Label: emotion.Fear})
	assert.False(t, enable)
}

func TestAudioCacheEvictsOldest(t *testing.T) {
	cache := NewAudioCache(2)
	cache.Put("a", &speech.TTSResponse{Text: "a"})
	cache.Put("b", &speech.TTSResponse{Text: "b"})
	cache.Put("c", &speech.TTSResponse{Text: "c"})

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get("a")
	assert.False(t, ok)
	clip, ok := cache.Get("c")
	require.True(t, ok)
	assert.Equal(t, "c", clip.Text)
}
