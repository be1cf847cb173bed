// AngelaMos | 2026
// migrate.go

// Package schema owns the relational layout of Users and Posts and the
// versioned migrations that create it.
package schema

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/carterperez-dev/templates/go-htmx/internal/core"
	"github.com/carterperez-dev/templates/go-htmx/internal/model"
)

type Record struct {
	bun.BaseModel `bun:"table:schema_migrations"`

	Version   string    `bun:"version,pk,type:varchar(64)"`
	Name      string    `bun:"name,type:varchar(255),notnull"`
	AppliedAt time.Time `bun:"applied_at,notnull"`
}

type Step func(ctx context.Context, tx bun.Tx) error

type Migration struct {
	Version string
	Name    string
	Up      Step
}

// Migrations is the ordered history. Append only.
var Migrations = []Migration{
	{Version: "001", Name: "create_users", Up: createUsers},
	{Version: "002", Name: "create_posts", Up: createPosts},
	{Version: "003", Name: "users_email_index", Up: createEmailIndex},
}

// Migrate applies every migration not yet recorded, each in its own
// transaction together with its record row.
func Migrate(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	_, err := db.NewCreateTable().
		Model((*Record)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for _, m := range Migrations {
		applied, err := db.NewSelect().
			Model((*Record)(nil)).
			Where("version = ?", m.Version).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", m.Version, err)
		}
		if applied {
			continue
		}

		err = core.InTx(ctx, db, func(ctx context.Context, tx bun.Tx) error {
			if err := m.Up(ctx, tx); err != nil {
				return err
			}

			_, err := tx.NewInsert().Model(&Record{
				Version:   m.Version,
				Name:      m.Name,
				AppliedAt: time.Now().UTC(),
			}).Exec(ctx)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %s %s: %w", m.Version, m.Name, err)
		}

		logger.Info("migration applied", "version", m.Version, "name", m.Name)
	}

	return nil
}

// Applied lists recorded migrations in version order.
func Applied(ctx context.Context, db bun.IDB) ([]Record, error) {
	var records []Record
	err := db.NewSelect().
		Model(&records).
		OrderExpr("version ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	return records, nil
}

func createUsers(ctx context.Context, tx bun.Tx) error {
	_, err := tx.NewCreateTable().
		Model((*model.User)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// Posts reference Users without cascade: users are only ever soft-deleted.
func createPosts(ctx context.Context, tx bun.Tx) error {
	_, err := tx.NewCreateTable().
		Model((*model.Post)(nil)).
		IfNotExists().
		ForeignKey(
			"(?) REFERENCES ? (?)",
			bun.Ident(model.ColumnUserID),
			bun.Ident(model.UsersTable),
			bun.Ident(model.ColumnID),
		).
		Exec(ctx)
	return err
}

func createEmailIndex(ctx context.Context, tx bun.Tx) error {
	q := tx.NewCreateIndex().
		Model((*model.User)(nil)).
		Unique().
		Index(model.UserEmailIndex).
		Column(model.ColumnEmail)

	// mysql has no CREATE INDEX IF NOT EXISTS
	if tx.Dialect().Name() != dialect.MySQL {
		q = q.IfNotExists()
	}

	_, err := q.Exec(ctx)
	return err
}
