package speech

// TTSRequest asks the synthesizer to speak one piece of text.
type TTSRequest struct {
	SessionID string  `json:"sessionId"`
	Text      string  `json:"text"`
	Voice     string  `json:"voice"`
	Speed     float32 `json:"speed"`  // 0.5-2.0
	Volume    float32 `json:"volume"` // 0.1-3.0
	Format    string  `json:"format"`
	Language  string  `json:"language"`

	// Emotion is the TTS style, not the user's emotion label.
	Emotion      string  `json:"emotion,omitempty"`
	EmotionScale float32 `json:"emotionScale,omitempty"`
}
