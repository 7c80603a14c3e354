package speech

import "time"

// TTSResponse is a synthesized clip.
type TTSResponse struct {
	SessionID string    `json:"sessionId"`
	AudioID   string    `json:"audioId,omitempty"`
	AudioData []byte    `json:"-"`
	AudioURL  string    `json:"audioUrl,omitempty"`
	Text      string    `json:"text"`
	Duration  int64     `json:"duration"` // milliseconds
	Format    string    `json:"format"`
	RequestID string    `json:"requestId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
