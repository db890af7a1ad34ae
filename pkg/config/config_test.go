package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8089" {
		t.Errorf("Expected Port to be 8089, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Backend.ReconnectDelay != 5*time.Second {
		t.Errorf("Expected reconnect delay 5s, got %v", cfg.Backend.ReconnectDelay)
	}

	if cfg.Desk.ActivePageSize != 2 || cfg.Desk.HistoryPageSize != 5 {
		t.Errorf("Expected page sizes 2/5, got %d/%d", cfg.Desk.ActivePageSize, cfg.Desk.HistoryPageSize)
	}

	if len(cfg.Desk.HistoryStates) != 2 {
		t.Errorf("Expected two history states, got %v", cfg.Desk.HistoryStates)
	}

	if cfg.Desk.StaleOverrideAfter != 2*time.Minute {
		t.Errorf("Expected stale override report after 2m, got %v", cfg.Desk.StaleOverrideAfter)
	}

	if cfg.Preferences.Store != "memory" {
		t.Errorf("Expected memory preferences store, got %s", cfg.Preferences.Store)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("BACKEND_URL", "http://desk-backend:8000/")
	os.Setenv("ORDERS_RECONNECT_DELAY", "250ms")
	os.Setenv("HISTORY_STATES", "accepted")
	os.Setenv("LOG_LEVEL", "warn")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("BACKEND_URL")
		os.Unsetenv("ORDERS_RECONNECT_DELAY")
		os.Unsetenv("HISTORY_STATES")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.Backend.BaseURL != "http://desk-backend:8000" {
		t.Errorf("Expected trailing slash to be trimmed, got %s", cfg.Backend.BaseURL)
	}

	if cfg.Backend.ReconnectDelay != 250*time.Millisecond {
		t.Errorf("Expected reconnect delay 250ms, got %v", cfg.Backend.ReconnectDelay)
	}

	if len(cfg.Desk.HistoryStates) != 1 || cfg.Desk.HistoryStates[0] != "accepted" {
		t.Errorf("Expected history states [accepted], got %v", cfg.Desk.HistoryStates)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("Expected LogLevel to be warn, got %s", cfg.LogLevel)
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	os.Setenv("ENV", "invalid")
	defer os.Unsetenv("ENV")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestValidatePreferencesStore(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"unknown store", map[string]string{"PREFERENCES_STORE": "etcd"}, true},
		{"redis without redis", map[string]string{"PREFERENCES_STORE": "redis"}, true},
		{"redis enabled", map[string]string{"PREFERENCES_STORE": "redis", "REDIS_ENABLED": "true"}, false},
		{"postgres without url", map[string]string{"PREFERENCES_STORE": "postgres"}, true},
		{"postgres with url", map[string]string{"PREFERENCES_STORE": "postgres", "DATABASE_URL": "postgres://desk@localhost/desk"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				os.Setenv(k, v)
			}
			defer func() {
				for k := range tt.env {
					os.Unsetenv(k)
				}
			}()

			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "2h")
	defer os.Unsetenv("TEST_DURATION")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	expected := 2 * time.Hour

	if duration != expected {
		t.Errorf("Expected duration to be %v, got %v", expected, duration)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	os.Setenv("TEST_INT", "100")
	defer os.Unsetenv("TEST_INT")

	value := getEnvAsInt("TEST_INT", 50)
	if value != 100 {
		t.Errorf("Expected value to be 100, got %d", value)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "true")
	defer os.Unsetenv("TEST_BOOL")

	value := getEnvAsBool("TEST_BOOL", false)
	if value != true {
		t.Errorf("Expected value to be true, got %v", value)
	}
}

func TestGetEnvAsList(t *testing.T) {
	os.Setenv("TEST_LIST", " a, ,b ,")
	defer os.Unsetenv("TEST_LIST")

	got := getEnvAsList("TEST_LIST", []string{"x"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Expected [a b], got %v", got)
	}

	if def := getEnvAsList("TEST_LIST_MISSING", []string{"x"}); len(def) != 1 || def[0] != "x" {
		t.Errorf("Expected default [x], got %v", def)
	}
}
