package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/symfx/pkg/config"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" || testing.Short() {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	db, err := New(&config.Config{Database: config.DatabaseConfig{
		URL:             url,
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	}})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestNew_BadURL(t *testing.T) {
	_, err := New(&config.Config{Database: config.DatabaseConfig{URL: "://nope"}})
	assert.Error(t, err)
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))
}

func TestHealthCheck(t *testing.T) {
	db := testDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	require.NoError(t, err)

	assert.True(t, status.Healthy)
	assert.Equal(t, int32(4), status.Stats.MaxConns)
}
