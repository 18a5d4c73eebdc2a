// Package logging wires slog output: JSON to stdout, plus an async batch
// handler that persists ERROR records to Postgres for the admin dashboard.
package logging

import (
	"log/slog"
	"os"
)

// Setup installs the bootstrap logger used until the database is up. JSON to
// stdout; debug level everywhere except production so local runs show query
// context.
func Setup() {
	level := slog.LevelDebug
	if os.Getenv("APP_ENV") == "production" {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}
