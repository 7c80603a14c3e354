package advisor

import (
	"context"
	"errors"
	"strings"

	"github.com/finpsyche/advisor/backend/internal/advice"
	"github.com/finpsyche/advisor/backend/internal/analysis/casual"
	"github.com/finpsyche/advisor/backend/internal/analysis/emotion"
	"github.com/finpsyche/advisor/backend/internal/analysis/personality"
	"github.com/finpsyche/advisor/backend/internal/knowledge"
	"github.com/finpsyche/advisor/backend/internal/model/chat"
	"github.com/finpsyche/advisor/backend/internal/model/profile"
	"github.com/finpsyche/advisor/backend/internal/model/speech"
	"github.com/finpsyche/advisor/backend/internal/service/ai"
	chatstore "github.com/finpsyche/advisor/backend/internal/service/chat"
	"github.com/finpsyche/advisor/backend/pkg/logger"
)

// Reply sources.
const (
	SourceCasual   = "casual"
	SourceLLM      = "llm"
	SourceComposer = "composer"
)

const defaultRetrievalK = 3

// ErrEmptyMessage is returned for blank chat messages.
var ErrEmptyMessage = errors.New("message required")

// AdviceGenerator produces raw advice text, typically from an LLM.
type AdviceGenerator interface {
	GenerateAdvice(ctx context.Context, req ai.AdviceRequest) (string, error)
}

// SpeechSynthesizer speaks a reply.
type SpeechSynthesizer interface {
	SynthesizeAdvice(ctx context.Context, sessionID, text, voice string, result emotion.Result) (*speech.TTSResponse, error)
}

// Request is one chat turn.
type Request struct {
	Message   string `json:"message"`
	UserID    string `json:"userId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Speak     bool   `json:"speak,omitempty"`
}

// Reply is the outcome of one turn. Casual turns carry no analysis; the
// scores are pointers so an analysed score of 0 is still reported.
type Reply struct {
	Reply                 string            `json:"reply"`
	Emotion               emotion.Label     `json:"emotion,omitempty"`
	EmotionScore          *float64          `json:"emotionScore,omitempty"`
	Personality           personality.Label `json:"personality,omitempty"`
	PersonalityConfidence *float64          `json:"personalityConfidence,omitempty"`
	Casual                bool              `json:"casual"`
	Source                string            `json:"source"`
	SessionID             string            `json:"sessionId,omitempty"`
	AudioURL              string            `json:"audioUrl,omitempty"`
}

// Status reports which collaborators are live.
type Status struct {
	Status           string `json:"status"`
	LLM              bool   `json:"llm"`
	Retrieval        bool   `json:"rag"`
	Speech           bool   `json:"speech"`
	History          bool   `json:"history"`
	EmotionModel     bool   `json:"emotionModel"`
	PersonalityModel bool   `json:"personalityModel"`
}

// Dependencies wires a Service. Casual, Emotion, Personality and Composer
// are required; everything else is optional.
type Dependencies struct {
	Casual      *casual.Detector
	Emotion     *emotion.Classifier
	Personality *personality.Classifier
	Composer    *advice.Composer
	Retriever   knowledge.Retriever
	Generator   AdviceGenerator
	Speech      SpeechSynthesizer
	History     chatstore.Store
	Profiles    profile.Store
	RetrievalK  int
}

// Service runs chat turns.
type Service struct {
	deps Dependencies
}

// NewService validates deps.
func NewService(deps Dependencies) (*Service, error) {
	switch {
	case deps.Casual == nil:
		return nil, errors.New("casual detector is required")
	case deps.Emotion == nil:
		return nil, errors.New("emotion classifier is required")
	case deps.Personality == nil:
		return nil, errors.New("personality classifier is required")
	case deps.Composer == nil:
		return nil, errors.New("advice composer is required")
	}
	if deps.RetrievalK < 1 {
		deps.RetrievalK = defaultRetrievalK
	}
	return &Service{deps: deps}, nil
}

// Chat runs one turn: small talk is answered directly, anything else is
// classified, enriched with knowledge-base context and answered by the
// generator or, failing that, the composer. The reply is always cleaned.
func (s *Service) Chat(ctx context.Context, req Request) (Reply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}

	log := logger.Component("advisor")
	sessionID := s.ensureSession(ctx, req.SessionID, req.UserID)
	history := s.loadHistory(ctx, sessionID)

	if s.deps.Casual.IsCasual(message) {
		reply := Reply{
			Reply:     s.deps.Casual.Reply(message),
			Casual:    true,
			Source:    SourceCasual,
			SessionID: sessionID,
		}
		s.save(ctx, chat.Message{SessionID: sessionID, Sender: chat.SenderUser, Content: message})
		s.save(ctx, chat.Message{SessionID: sessionID, Sender: chat.SenderAdvisor, Content: reply.Reply})
		return reply, nil
	}

	emo := s.deps.Emotion.Predict(message)
	pers := s.deps.Personality.Predict(message, emo)
	log.WithField("session", sessionID).Infof("classified emotion=%s(%.2f) personality=%s(%.2f)",
		emo.Label, emo.Score, pers.Label, pers.Confidence)

	s.save(ctx, chat.Message{
		SessionID:             sessionID,
		Sender:                chat.SenderUser,
		Content:               message,
		Emotion:               string(emo.Label),
		EmotionScore:          emo.Score,
		Personality:           string(pers.Label),
		PersonalityConfidence: pers.Confidence,
	})

	snippets := s.retrieve(ctx, message, pers, emo)

	raw, source := s.generate(ctx, ai.AdviceRequest{
		SessionID:    sessionID,
		Message:      message,
		Personality:  string(pers.Label),
		Emotion:      string(emo.Label),
		EmotionScore: emo.Score,
		Snippets:     snippets,
		History:      history,
	}, pers, emo)

	reply := Reply{
		Reply:                 advice.Clean(raw),
		Emotion:               emo.Label,
		EmotionScore:          &emo.Score,
		Personality:           pers.Label,
		PersonalityConfidence: &pers.Confidence,
		Source:                source,
		SessionID:             sessionID,
	}

	s.save(ctx, chat.Message{SessionID: sessionID, Sender: chat.SenderAdvisor, Content: reply.Reply})

	if req.Speak && s.deps.Speech != nil {
		clip, err := s.deps.Speech.SynthesizeAdvice(ctx, sessionID, raw, s.voiceFor(pers.Label), emo)
		if err != nil {
			log.WithError(err).Warn("speech synthesis failed")
		} else {
			reply.AudioURL = clip.AudioURL
		}
	}

	return reply, nil
}

// Status reports the live collaborators.
func (s *Service) Status() Status {
	return Status{
		Status:           "ok",
		LLM:              s.deps.Generator != nil,
		Retrieval:        s.deps.Retriever != nil,
		Speech:           s.deps.Speech != nil,
		History:          s.deps.History != nil,
		EmotionModel:     s.deps.Emotion.HasModel(),
		PersonalityModel: s.deps.Personality.HasModel(),
	}
}

func (s *Service) generate(ctx context.Context, req ai.AdviceRequest, pers personality.Result, emo emotion.Result) (string, string) {
	if s.deps.Generator != nil {
		raw, err := s.deps.Generator.GenerateAdvice(ctx, req)
		if err == nil {
			return raw, SourceLLM
		}
		logger.Component("advisor").WithError(err).Warn("advice generation failed, using composer")
	}
	return s.deps.Composer.Compose(req.Message, pers, emo, req.Snippets), SourceComposer
}

func (s *Service) retrieve(ctx context.Context, message string, pers personality.Result, emo emotion.Result) []string {
	if s.deps.Retriever == nil {
		return nil
	}
	snippets, err := s.deps.Retriever.Retrieve(ctx, message, string(pers.Label), string(emo.Label), s.deps.RetrievalK)
	if err != nil {
		logger.Component("advisor").WithError(err).Warn("retrieval failed, continuing without context")
		return nil
	}
	return snippets
}

func (s *Service) ensureSession(ctx context.Context, sessionID, userID string) string {
	if s.deps.History == nil {
		return sessionID
	}
	if sessionID != "" {
		if _, err := s.deps.History.GetSession(ctx, sessionID); err == nil {
			return sessionID
		} else if !errors.Is(err, chatstore.ErrSessionNotFound) {
			logger.Component("advisor").WithError(err).Warn("session lookup failed")
			return sessionID
		}
	}

	session, err := s.deps.History.CreateSession(ctx, userID)
	if err != nil {
		logger.Component("advisor").WithError(err).Warn("create session failed")
		return sessionID
	}
	return session.ID
}

func (s *Service) loadHistory(ctx context.Context, sessionID string) []chat.Message {
	if s.deps.History == nil || sessionID == "" {
		return nil
	}
	history, err := s.deps.History.LoadTranscript(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, chatstore.ErrSessionNotFound) {
			logger.Component("advisor").WithError(err).Warn("load transcript failed")
		}
		return nil
	}
	return history
}

func (s *Service) save(ctx context.Context, msg chat.Message) {
	if s.deps.History == nil || msg.SessionID == "" {
		return
	}
	if _, err := s.deps.History.SaveMessage(ctx, msg); err != nil {
		logger.Component("advisor").WithError(err).WithField("session", msg.SessionID).Warn("save message failed")
	}
}

func (s *Service) voiceFor(label personality.Label) string {
	if s.deps.Profiles == nil {
		return ""
	}
	if p, ok := s.deps.Profiles.Find(string(label)); ok {
		return p.VoiceID
	}
	return ""
}
