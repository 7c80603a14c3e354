package speech

import (
	"sync"

	"github.com/finpsyche/advisor/backend/internal/model/speech"
)

// AudioCache keeps the most recent clips in memory. When full, the oldest
// clip is evicted.
type AudioCache struct {
	mu    sync.Mutex
	limit int
	order []string
	clips map[string]*speech.TTSResponse
}

// NewAudioCache creates a cache holding at most limit clips (minimum 1).
func NewAudioCache(limit int) *AudioCache {
	return &AudioCache{
		limit: max(limit, 1),
		clips: make(map[string]*speech.TTSResponse),
	}
}

// Put stores clip under id.
func (c *AudioCache) Put(id string, clip *speech.TTSResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.order) >= c.limit {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.clips, oldest)
	}
	c.order = append(c.order, id)
	c.clips[id] = clip
}

// Get returns the clip stored under id.
func (c *AudioCache) Get(id string) (*speech.TTSResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clip, ok := c.clips[id]
	return clip, ok
}

// Len returns the number of cached clips.
func (c *AudioCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clips)
}
