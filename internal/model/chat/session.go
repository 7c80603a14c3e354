package chat

import "time"

// Session captures one conversation. UserID is whatever the client sends;
// anonymous sessions leave it empty.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
