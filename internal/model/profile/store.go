package profile

import "strings"

// Store exposes profile lookup for handlers and services.
type Store interface {
	List() []Profile
	Find(personality string) (Profile, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Profile
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied profiles.
func NewMemoryStore(items []Profile) *MemoryStore {
	return &MemoryStore{items: append([]Profile(nil), items...)}
}

// List returns every profile.
func (s *MemoryStore) List() []Profile {
	return append([]Profile(nil), s.items...)
}

// Find looks up a profile by personality label, ignoring case.
func (s *MemoryStore) Find(personality string) (Profile, bool) {
	for _, item := range s.items {
		if strings.EqualFold(item.Personality, personality) {
			return item, true
		}
	}
	return Profile{}, false
}
