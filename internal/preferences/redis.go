package preferences

import (
	"context"
	"fmt"

	"github.com/wonny/symfx/pkg/redis"
)

// RedisStore shares preferences between desk instances
type RedisStore struct {
	cache *redis.Cache
}

// NewRedisStore stores values through cache
func NewRedisStore(cache *redis.Cache) *RedisStore {
	return &RedisStore{cache: cache}
}

func (s *RedisStore) Theme(ctx context.Context, user string) (Theme, error) {
	var raw string
	found, err := s.cache.Get(ctx, redis.ThemeKey(user), &raw)
	if err != nil {
		return "", fmt.Errorf("failed to read theme: %w", err)
	}
	if !found {
		return DefaultTheme, nil
	}

	// a value written by something else falls back to the default
	theme, err := ParseTheme(raw)
	if err != nil {
		return DefaultTheme, nil
	}
	return theme, nil
}

func (s *RedisStore) SetTheme(ctx context.Context, user string, theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, redis.ThemeKey(user), string(theme), redis.TTLForever); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

func (s *RedisStore) Layout(ctx context.Context, user string) (Layout, error) {
	var layout Layout
	found, err := s.cache.Get(ctx, redis.LayoutKey(user), &layout)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to read layout: %w", err)
	}
	if !found {
		return DefaultLayout(), nil
	}
	return layout, nil
}

func (s *RedisStore) SetLayout(ctx context.Context, user string, layout Layout) error {
	layout = layout.normalized()
	if err := layout.Validate(); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, redis.LayoutKey(user), layout, redis.TTLForever); err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}
	return nil
}
