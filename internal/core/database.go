// AngelaMos | 2026
// database.go

package core

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"

	"github.com/carterperez-dev/templates/go-htmx/internal/config"
)

// Database owns the process-wide connection pool. DB and Bun share the
// same *sql.DB; Close releases it once.
type Database struct {
	DB  *sqlx.DB
	Bun *bun.DB
}

func NewDatabase(
	ctx context.Context,
	cfg config.DatabaseConfig,
) (*Database, error) {
	driverName, dialect, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.URL
	if cfg.Driver == "sqlite" {
		dsn = sqliteDSN(dsn, sqliteshim.DriverName())
	}

	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(jitteredDuration(cfg.ConnMaxLifetime))
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close() //nolint:errcheck // cleanup on connection failure
		return nil, fmt.Errorf("ping database: %w", err)
	}

	bunDB := bun.NewDB(db.DB, dialect)
	if cfg.QueryLog {
		bunDB.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}

	return &Database{DB: db, Bun: bunDB}, nil
}

func dialectFor(driver string) (string, schema.Dialect, error) {
	switch driver {
	case "pgx":
		return "pgx", pgdialect.New(), nil
	case "postgres":
		return "postgres", pgdialect.New(), nil
	case "mysql":
		return "mysql", mysqldialect.New(), nil
	case "sqlite":
		return sqliteshim.ShimName, sqlitedialect.New(), nil
	default:
		return "", nil, fmt.Errorf("unsupported database driver: %q", driver)
	}
}

// sqliteDSN turns on foreign key enforcement for every connection the
// pool opens. The parameter is spelled differently by the modernc and
// mattn drivers the shim may resolve to.
func sqliteDSN(url, driver string) string {
	param := "_pragma=foreign_keys(1)"
	if driver == "sqlite3" {
		param = "_foreign_keys=1"
	}
	if strings.Contains(url, param) {
		return url
	}

	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + param
}

func (d *Database) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

func (d *Database) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := d.DB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

func (d *Database) Stats() sql.DBStats {
	return d.DB.Stats()
}

// InTx runs fn inside a transaction on db. fn's error rolls back; a panic
// rolls back and is re-raised.
func InTx(
	ctx context.Context,
	db *bun.DB,
	fn func(ctx context.Context, tx bun.Tx) error,
) error {
	return InTxWithOptions(ctx, db, nil, fn)
}

func InTxWithOptions(
	ctx context.Context,
	db *bun.DB,
	opts *sql.TxOptions,
	fn func(ctx context.Context, tx bun.Tx) error,
) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback() //nolint:errcheck // best-effort rollback on panic
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func jitteredDuration(base time.Duration) time.Duration {
	if base < 7 {
		return base
	}
	//nolint:gosec // G404: non-security-sensitive jitter for connection pool
	jitter := time.Duration(rand.Int64N(int64(base / 7)))
	return base + jitter
}
