package speech

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/finpsyche/advisor/backend/internal/analysis/emotion"
	"github.com/finpsyche/advisor/backend/internal/model/profile"
	"github.com/finpsyche/advisor/backend/internal/model/speech"
	"github.com/finpsyche/advisor/backend/pkg/logger"
	"github.com/finpsyche/advisor/backend/pkg/utils"
)

// SpeechService abstracts speech synthesis for the handler.
type SpeechService interface {
	SynthesizeAdvice(ctx context.Context, sessionID, text, voice string, result emotion.Result) (*speech.TTSResponse, error)
	Audio(id string) (*speech.TTSResponse, bool)
}

// Handler serves speech synthesis and cached clips.
type Handler struct {
	speechSvc SpeechService
	profiles  profile.Store
}

// New creates a speech handler. speechSvc may be nil, in which case every
// route answers 503.
func New(speechSvc SpeechService, profiles profile.Store) *Handler {
	return &Handler{speechSvc: speechSvc, profiles: profiles}
}

// RegisterRoutes mounts the speech routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/speech", func(speechRouter chi.Router) {
		if h.speechSvc == nil {
			unavailable := func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "speech synthesis not configured")
			}
			speechRouter.Post("/synthesize", unavailable)
			speechRouter.Get("/audio/{audioID}", unavailable)
			speechRouter.Get("/health", unavailable)
			return
		}

		speechRouter.Post("/synthesize", h.handleSynthesize)
		speechRouter.Get("/audio/{audioID}", h.handleAudio)
		speechRouter.Get("/health", h.handleHealth)
	})
}

type synthesizeRequest struct {
	SessionID    string  `json:"sessionId"`
	Text         string  `json:"text"`
	Voice        string  `json:"voice"`
	Personality  string  `json:"personality"`
	Emotion      string  `json:"emotion"`
	EmotionScore float64 `json:"emotionScore"`
}

func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req synthesizeRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	voice := strings.TrimSpace(req.Voice)
	if voice == "" && h.profiles != nil && req.Personality != "" {
		if p, ok := h.profiles.Find(req.Personality); ok {
			voice = p.VoiceID
		}
	}

	result := emotion.Result{Label: emotion.Label(req.Emotion), Score: req.EmotionScore}
	resp, err := h.speechSvc.SynthesizeAdvice(r.Context(), req.SessionID, req.Text, voice, result)
	if err != nil {
		logger.Component("speech").WithError(err).Error("synthesis failed")
		utils.RespondError(w, http.StatusBadGateway, "speech synthesis failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAudio(w http.ResponseWriter, r *http.Request) {
	clip, ok := h.speechSvc.Audio(chi.URLParam(r, "audioID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "audio not found")
		return
	}

	format := clip.Format
	if format == "" {
		format = "mpeg"
	}
	if format == "mp3" {
		format = "mpeg"
	}
	w.Header().Set("Content-Type", "audio/"+format)
	w.Header().Set("Content-Length", strconv.Itoa(len(clip.AudioData)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(clip.AudioData); err != nil {
		logger.Component("speech").WithError(err).Warn("failed to write audio response")
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "speech",
	})
}
