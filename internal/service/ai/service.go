package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/finpsyche/advisor/backend/internal/config"
	"github.com/finpsyche/advisor/backend/internal/model/chat"
	"github.com/finpsyche/advisor/backend/internal/model/profile"
	"github.com/finpsyche/advisor/backend/pkg/logger"
)

const historyLimit = 10

// ErrEmptyCompletion is returned when the model answers with no text.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// AdviceRequest carries everything the model needs for one turn.
type AdviceRequest struct {
	SessionID    string
	Message      string
	Personality  string
	Emotion      string
	EmotionScore float64
	Snippets     []string
	History      []chat.Message
}

// Service generates advice with an eino chain in front of a chat model.
type Service struct {
	profiles profile.Store
	prompts  *PromptManager
	limiter  *rate.Limiter
	chain    compose.Runnable[map[string]any, *schema.Message]
}

// NewServiceFromConfig builds the Ark chat model described by cfg and wraps
// it in a Service.
func NewServiceFromConfig(ctx context.Context, profiles profile.Store, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewService(ctx, chatModel, profiles, cfg.RequestsPerMinute)
}

// NewService compiles the prompt chain around chatModel. rpm <= 0 disables
// throttling.
func NewService(ctx context.Context, chatModel model.BaseChatModel, profiles profile.Store, rpm int) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile advice chain: %w", err)
	}

	var limiter *rate.Limiter
	if rpm > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60), max(rpm/10, 1))
	}

	return &Service{
		profiles: profiles,
		prompts:  NewPromptManager(),
		limiter:  limiter,
		chain:    runnable,
	}, nil
}

// GenerateAdvice returns the raw model answer. Callers are expected to run
// it through advice.Clean.
func (s *Service) GenerateAdvice(ctx context.Context, req AdviceRequest) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	response, err := s.chain.Invoke(ctx, s.buildChainInput(req))
	if err != nil {
		return "", fmt.Errorf("failed to run advice chain: %w", err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", ErrEmptyCompletion
	}

	logger.Component("ai").WithField("session", req.SessionID).
		WithField("personality", req.Personality).
		Debugf("generated advice, length=%d", len(response.Content))
	return response.Content, nil
}

func (s *Service) buildChainInput(req AdviceRequest) map[string]any {
	return map[string]any{
		"system":  s.buildSystemPrompt(req),
		"history": buildHistoryMessages(req.History),
		"query":   s.prompts.BuildUserPrompt(req.Message, req.Personality, req.Emotion, req.Snippets),
	}
}

func (s *Service) buildSystemPrompt(req AdviceRequest) string {
	p := profile.Profile{Personality: req.Personality, Title: "Advisor", Tone: "warm, practical"}
	if s.profiles != nil {
		if found, ok := s.profiles.Find(req.Personality); ok {
			p = found
		}
	}
	return s.prompts.BuildSystemPrompt(p, req.Emotion, req.EmotionScore)
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.SenderAdvisor:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}
