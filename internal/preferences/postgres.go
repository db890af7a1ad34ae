package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/symfx/pkg/database"
)

const (
	keyTheme  = "theme"
	keyLayout = "layout"
)

// PostgresStore keeps preferences in desk_preferences
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore expects db.Migrate to have run
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) get(ctx context.Context, user, key string, dest interface{}) (bool, error) {
	query := `
		SELECT value
		FROM desk_preferences
		WHERE user_name = $1 AND pref_key = $2
	`

	var raw []byte
	err := s.db.Pool.QueryRow(ctx, query, user, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *PostgresStore) put(ctx context.Context, user, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	query := `
		INSERT INTO desk_preferences (user_name, pref_key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_name, pref_key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.db.Pool.Exec(ctx, query, user, key, raw); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Theme(ctx context.Context, user string) (Theme, error) {
	var raw string
	found, err := s.get(ctx, user, keyTheme, &raw)
	if err != nil || !found {
		return DefaultTheme, err
	}
	theme, err := ParseTheme(raw)
	if err != nil {
		return DefaultTheme, nil
	}
	return theme, nil
}

func (s *PostgresStore) SetTheme(ctx context.Context, user string, theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	return s.put(ctx, user, keyTheme, string(theme))
}

func (s *PostgresStore) Layout(ctx context.Context, user string) (Layout, error) {
	var layout Layout
	found, err := s.get(ctx, user, keyLayout, &layout)
	if err != nil {
		return Layout{}, err
	}
	if !found {
		return DefaultLayout(), nil
	}
	return layout, nil
}

func (s *PostgresStore) SetLayout(ctx context.Context, user string, layout Layout) error {
	layout = layout.normalized()
	if err := layout.Validate(); err != nil {
		return err
	}
	return s.put(ctx, user, keyLayout, layout)
}
