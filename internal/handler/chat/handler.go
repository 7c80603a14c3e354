package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finpsyche/advisor/backend/internal/model/chat"
	"github.com/finpsyche/advisor/backend/internal/service/advisor"
	chatService "github.com/finpsyche/advisor/backend/internal/service/chat"
	"github.com/finpsyche/advisor/backend/pkg/logger"
	"github.com/finpsyche/advisor/backend/pkg/utils"
)

// Handler serves chat turns and the session history.
type Handler struct {
	advisor *advisor.Service
	history chatService.Store
}

// New creates a chat handler. history may be nil, in which case the session
// routes answer 503.
func New(advisorSvc *advisor.Service, history chatService.Store) *Handler {
	return &Handler{advisor: advisorSvc, history: history}
}

// RegisterRoutes mounts the chat routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/session", h.handleCreateSession)
	r.Post("/messages", h.handleSaveMessage)
	r.Get("/sessions/{sessionID}/messages", h.handleTranscript)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		advisor.Request
		LegacyUserID string `json:"user_id,omitempty"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req := payload.Request
	if req.UserID == "" {
		req.UserID = payload.LegacyUserID
	}

	reply, err := h.advisor.Chat(r.Context(), req)
	if errors.Is(err, advisor.ErrEmptyMessage) {
		utils.RespondError(w, http.StatusBadRequest, "Message required")
		return
	}
	if err != nil {
		logger.Component("chat").WithError(err).Error("chat turn failed")
		utils.RespondError(w, http.StatusInternalServerError, "chat failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "history unavailable")
		return
	}

	var payload struct {
		UserID string `json:"userId"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.history.CreateSession(r.Context(), payload.UserID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleSaveMessage(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "history unavailable")
		return
	}

	var payload struct {
		SessionID string `json:"sessionId"`
		Sender    string `json:"sender"`
		Content   string `json:"content"`
		Emotion   string `json:"emotion"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Sender != chat.SenderUser && payload.Sender != chat.SenderAdvisor {
		utils.RespondError(w, http.StatusBadRequest, "sender must be user or advisor")
		return
	}

	saved, err := h.history.SaveMessage(r.Context(), chat.Message{
		SessionID: payload.SessionID,
		Sender:    payload.Sender,
		Content:   payload.Content,
		Emotion:   payload.Emotion,
	})
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatService.ErrEmptyContent):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	default:
		utils.RespondJSON(w, http.StatusCreated, saved)
	}
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "history unavailable")
		return
	}

	messages, err := h.history.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if errors.Is(err, chatService.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}
