package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpsyche/advisor/backend/internal/analysis/emotion"
	"github.com/finpsyche/advisor/backend/internal/model/profile"
	"github.com/finpsyche/advisor/backend/internal/model/speech"
)

type stubSpeechService struct {
	voice  string
	result emotion.Result
	err    error
	clips  map[string]*speech.TTSResponse
}

func (s *stubSpeechService) SynthesizeAdvice(_ context.Context, sessionID, text, voice string, result emotion.Result) (*speech.TTSResponse, error) {
	s.voice, s.result = voice, result
	if s.err != nil {
		return nil, s.err
	}
	clip := &speech.TTSResponse{SessionID: sessionID, Text: text, AudioID: "clip", AudioURL: "/api/speech/audio/clip", AudioData: []byte("ID3"), Format: "mp3"}
	s.clips["clip"] = clip
	return clip, nil
}

func (s *stubSpeechService) Audio(id string) (*speech.TTSResponse, bool) {
	clip, ok := s.clips[id]
	return clip, ok
}

func setupRouter(svc SpeechService) *chi.Mux {
	r := chi.NewRouter()
	New(svc, profile.NewMemoryStore(profile.Seed())).RegisterRoutes(r)
	return r
}

func TestSynthesizeAndFetchAudio(t *testing.T) {
	svc := &stubSpeechService{clips: map[string]*speech.TTSResponse{}}
	r := setupRouter(svc)

	body, _ := json.Marshal(map[string]any{"text": "Build an emergency fund first.", "personality": "Emotional", "emotion": "Fear", "emotionScore": 0.6})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/speech/synthesize", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, resp.Code)

	var got speech.TTSResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "/api/speech/audio/clip", got.AudioURL)
	assert.Equal(t, "en_female_skye_emo_v2_mars_bigtts", svc.voice)
	assert.Equal(t, emotion.Fear, svc.result.Label)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/speech/audio/clip", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "audio/mpeg", resp.Header().Get("Content-Type"))
	assert.Equal(t, "ID3", resp.Body.String())

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/speech/audio/nope", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSynthesizeValidationAndFailure(t *testing.T) {
	svc := &stubSpeechService{clips: map[string]*speech.TTSResponse{}}
	r := setupRouter(svc)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/speech/synthesize", bytes.NewBufferString(`{"text":"  "}`)))
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	svc.err = errors.New("tts offline")
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/speech/synthesize", bytes.NewBufferString(`{"text":"Save ten percent of income."}`)))
	assert.Equal(t, http.StatusBadGateway, resp.Code)
}

func TestSpeechUnavailable(t *testing.T) {
	r := setupRouter(nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/speech/synthesize"},
		{http.MethodGet, "/speech/audio/x"},
		{http.MethodGet, "/speech/health"},
	} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code, tc.path)
	}
}
