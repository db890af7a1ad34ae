package preferences

import (
	"context"
	"sync"
)

// MemoryStore keeps preferences for the life of the process
type MemoryStore struct {
	mu      sync.RWMutex
	themes  map[string]Theme
	layouts map[string]Layout
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		themes:  make(map[string]Theme),
		layouts: make(map[string]Layout),
	}
}

func (s *MemoryStore) Theme(ctx context.Context, user string) (Theme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.themes[user]; ok {
		return t, nil
	}
	return DefaultTheme, nil
}

func (s *MemoryStore) SetTheme(ctx context.Context, user string, theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.themes[user] = theme
	return nil
}

func (s *MemoryStore) Layout(ctx context.Context, user string) (Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if l, ok := s.layouts[user]; ok {
		return cloneLayout(l), nil
	}
	return DefaultLayout(), nil
}

func (s *MemoryStore) SetLayout(ctx context.Context, user string, layout Layout) error {
	layout = layout.normalized()
	if err := layout.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[user] = cloneLayout(layout)
	return nil
}

func cloneLayout(l Layout) Layout {
	l.Panels = append([]Panel(nil), l.Panels...)
	return l
}
