// AngelaMos | 2026
// dbtest.go

// Package dbtest opens migrated in-memory sqlite databases for tests.
package dbtest

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/carterperez-dev/templates/go-htmx/internal/config"
	"github.com/carterperez-dev/templates/go-htmx/internal/core"
	"github.com/carterperez-dev/templates/go-htmx/internal/schema"
)

// Config is an in-memory sqlite pool pinned to one connection, so every
// statement sees the same database.
func Config() config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver:          "sqlite",
		URL:             "file::memory:?cache=shared",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Hour,
	}
}

var dbName = strings.NewReplacer("/", "_", " ", "_", "#", "_")

// Open returns a fresh, migrated database closed at test cleanup.
func Open(t testing.TB) *core.Database {
	t.Helper()

	cfg := Config()
	cfg.URL = "file:" + dbName.Replace(t.Name()) + "?mode=memory&cache=shared"

	db, err := core.NewDatabase(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, schema.Migrate(context.Background(), db.Bun, logger))

	return db
}

// New is Open for callers that only need the bun handle.
func New(t testing.TB) *bun.DB {
	t.Helper()
	return Open(t).Bun
}
