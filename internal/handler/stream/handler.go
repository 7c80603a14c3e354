package stream

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/finpsyche/advisor/backend/internal/service/advisor"
	"github.com/finpsyche/advisor/backend/pkg/logger"
	"github.com/finpsyche/advisor/backend/pkg/utils"
)

// Handler answers a chat turn as a sequence of Server-Sent Events:
// start, analysis, message, end.
type Handler struct {
	advisor *advisor.Service
}

// New creates a stream handler.
func New(advisorSvc *advisor.Service) *Handler {
	return &Handler{advisor: advisorSvc}
}

// StreamResponse is the payload of every event.
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Analysis is the payload of the analysis event.
type Analysis struct {
	Emotion               string   `json:"emotion,omitempty"`
	EmotionScore          *float64 `json:"emotionScore,omitempty"`
	Personality           string   `json:"personality,omitempty"`
	PersonalityConfidence *float64 `json:"personalityConfidence,omitempty"`
	Casual                bool     `json:"casual"`
	Source                string   `json:"source"`
}

// RegisterRoutes mounts the stream route on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	message := strings.TrimSpace(r.URL.Query().Get("message"))
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	utils.SetupSSEHeaders(w)

	utils.SendSSEEvent(w, flusher, "start", StreamResponse{Event: "start", SessionID: sessionID})

	reply, err := h.advisor.Chat(r.Context(), advisor.Request{
		Message:   message,
		SessionID: sessionID,
		Speak:     r.URL.Query().Get("speak") == "true",
	})
	if err != nil {
		if !errors.Is(err, r.Context().Err()) {
			logger.Component("stream").WithError(err).WithField("session", sessionID).Error("chat turn failed")
		}
		utils.SendSSEEvent(w, flusher, "error", StreamResponse{Event: "error", SessionID: sessionID, Error: "chat failed"})
		return
	}
	if reply.SessionID != "" {
		sessionID = reply.SessionID
	}

	utils.SendSSEEvent(w, flusher, "analysis", Analysis{
		Emotion:               string(reply.Emotion),
		EmotionScore:          reply.EmotionScore,
		Personality:           string(reply.Personality),
		PersonalityConfidence: reply.PersonalityConfidence,
		Casual:                reply.Casual,
		Source:                reply.Source,
	})
	utils.SendSSEEvent(w, flusher, "message", StreamResponse{Event: "message", SessionID: sessionID, Content: reply.Reply})
	if reply.AudioURL != "" {
		utils.SendSSEEvent(w, flusher, "audio", StreamResponse{Event: "audio", SessionID: sessionID, Content: reply.AudioURL})
	}
	utils.SendSSEEvent(w, flusher, "end", StreamResponse{Event: "end", SessionID: sessionID, Finished: true})

	logger.Component("stream").WithField("session", sessionID).Debug("stream completed")
}
