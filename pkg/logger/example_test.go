package logger_test

import (
	"errors"

	"github.com/wonny/symfx/pkg/config"
	"github.com/wonny/symfx/pkg/logger"
)

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg).Component("feed")

	log.WithFields(map[string]interface{}{
		"quote_id": "D4F23E64",
		"state":    "working",
	}).Info("Order updated")
}

// Example_withError demonstrates error logging
func Example_withError() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	err := errors.New("backend returned 503")
	log.WithError(err).
		WithField("quote_id", "B1A23E54").
		Error("Failed to update order on backend")
}
