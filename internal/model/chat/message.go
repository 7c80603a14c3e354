package chat

import "time"

// Sender values used by the advisor.
const (
	SenderUser    = "user"
	SenderAdvisor = "advisor"
)

// Message persists individual turns together with the analysis of user turns.
type Message struct {
	ID                    string    `json:"id"`
	SessionID             string    `json:"sessionId"`
	Sender                string    `json:"sender"`
	Content               string    `json:"content"`
	Emotion               string    `json:"emotion,omitempty"`
	EmotionScore          float64   `json:"emotionScore,omitempty"`
	Personality           string    `json:"personality,omitempty"`
	PersonalityConfidence float64   `json:"personalityConfidence,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
}
