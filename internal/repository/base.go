// AngelaMos | 2026
// base.go

package repository

import (
	"context"
	"fmt"
	"slices"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/templates/go-htmx/internal/core"
)

const tracerName = "github.com/carterperez-dev/templates/go-htmx/internal/repository"

// Hydrator turns a batch of raw rows into entities. It must return exactly
// one entity per row, in row order, and should fetch related data in a
// constant number of queries regardless of len(rows).
type Hydrator[R, E any] func(ctx context.Context, db bun.IDB, rows []*R) ([]*E, error)

// Values is a partial column update keyed by column name.
type Values map[string]any

type Config[R, E any] struct {
	Table string
	PK    string
	KeyOf func(*R) int64

	// Scope is the default SELECT. nil selects every column of R.
	Scope BaseQuery

	// Hydrate is optional. Without it R and E must be the same type.
	Hydrate Hydrator[R, E]
}

// Base is a CRUD repository over rows of type R returning entities of
// type E. It holds the shared handle and never closes it.
type Base[R, E any] struct {
	db     bun.IDB
	cfg    Config[R, E]
	tracer trace.Tracer
}

func New[R, E any](db bun.IDB, cfg Config[R, E]) *Base[R, E] {
	if cfg.PK == "" {
		cfg.PK = "id"
	}

	return &Base[R, E]{
		db:     db,
		cfg:    cfg,
		tracer: otel.Tracer(tracerName),
	}
}

func (b *Base[R, E]) Table() string {
	return b.cfg.Table
}

// DB returns the handle a call with opts would execute on.
func (b *Base[R, E]) DB(opts ...Option) bun.IDB {
	return b.resolve(opts).db
}

// BuildQuery returns the composable SELECT a call with opts would start
// from: the per-call base query, else the scope, else SELECT *.
func (b *Base[R, E]) BuildQuery(opts ...Option) *bun.SelectQuery {
	return b.buildQuery(b.resolve(opts))
}

func (b *Base[R, E]) Get(ctx context.Context, pk int64, opts ...Option) (_ *E, err error) {
	ctx, span := b.start(ctx, "get")
	defer func() { finish(ctx, span, err) }()

	o := b.resolve(opts)

	var rows []*R
	err = b.buildQuery(o).
		Where("? = ?", bun.Ident(b.cfg.PK), pk).
		Limit(1).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", b.cfg.Table, err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	entities, err := b.hydrate(ctx, o.db, rows)
	if err != nil {
		return nil, err
	}

	return entities[0], nil
}

func (b *Base[R, E]) GetOrFail(ctx context.Context, pk int64, opts ...Option) (*E, error) {
	entity, err := b.Get(ctx, pk, opts...)
	if err != nil {
		return nil, err
	}

	if entity == nil {
		return nil, &NotFoundError{Table: b.cfg.Table, Key: pk}
	}

	return entity, nil
}

// MGet returns one slot per requested key in request order. Keys with no
// matching row yield a nil slot; repeated keys yield distinct values.
func (b *Base[R, E]) MGet(ctx context.Context, pks []int64, opts ...Option) (_ []*E, err error) {
	if len(pks) == 0 {
		return []*E{}, nil
	}

	ctx, span := b.start(ctx, "mget")
	defer func() { finish(ctx, span, err) }()

	o := b.resolve(opts)

	rows, err := b.fetchKeys(ctx, o, pks)
	if err != nil {
		return nil, err
	}

	entities, err := b.hydrate(ctx, o.db, rows)
	if err != nil {
		return nil, err
	}

	byKey := make(map[int64]*E, len(rows))
	for i, row := range rows {
		byKey[b.cfg.KeyOf(row)] = entities[i]
	}

	return spread(pks, byKey), nil
}

// MGetPartial is MGet without hydration. Hydrators use it to load the
// other side of a relation without recursing back.
func (b *Base[R, E]) MGetPartial(ctx context.Context, pks []int64, opts ...Option) (_ []*R, err error) {
	if len(pks) == 0 {
		return []*R{}, nil
	}

	ctx, span := b.start(ctx, "mget_partial")
	defer func() { finish(ctx, span, err) }()

	rows, err := b.fetchKeys(ctx, b.resolve(opts), pks)
	if err != nil {
		return nil, err
	}

	byKey := make(map[int64]*R, len(rows))
	for _, row := range rows {
		byKey[b.cfg.KeyOf(row)] = row
	}

	return spread(pks, byKey), nil
}

func (b *Base[R, E]) List(ctx context.Context, opts ...Option) (_ []*E, err error) {
	ctx, span := b.start(ctx, "list")
	defer func() { finish(ctx, span, err) }()

	o := b.resolve(opts)

	var rows []*R
	err = b.buildQuery(o).
		OrderExpr("? ASC", bun.Ident(b.cfg.PK)).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", b.cfg.Table, err)
	}

	return b.hydrate(ctx, o.db, rows)
}

func (b *Base[R, E]) Count(ctx context.Context, opts ...Option) (_ int, err error) {
	ctx, span := b.start(ctx, "count")
	defer func() { finish(ctx, span, err) }()

	n, err := b.buildQuery(b.resolve(opts)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", b.cfg.Table, err)
	}

	return n, nil
}

// Insert writes row, reads back the generated key and returns the stored
// entity through GetOrFail so defaults and hydration are reflected.
func (b *Base[R, E]) Insert(ctx context.Context, row *R, opts ...Option) (_ *E, err error) {
	ctx, span := b.start(ctx, "insert")
	defer func() { finish(ctx, span, err) }()

	o := b.resolve(opts)

	if _, err = o.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert %s: %w", b.cfg.Table, core.ClassifyStoreError(err))
	}

	return b.GetOrFail(ctx, b.cfg.KeyOf(row), opts...)
}

// Update applies values to the row with key pk and returns the row as
// GetOrFail sees it afterwards. Empty values skip the UPDATE.
func (b *Base[R, E]) Update(ctx context.Context, pk int64, values Values, opts ...Option) (_ *E, err error) {
	ctx, span := b.start(ctx, "update")
	defer func() { finish(ctx, span, err) }()

	if len(values) > 0 {
		if err = b.Exec(ctx, pk, values, opts...); err != nil {
			return nil, err
		}
	}

	return b.GetOrFail(ctx, pk, opts...)
}

// Exec applies values to the row with key pk without reading it back. The
// default scope does not apply, so it also reaches rows the scope hides.
func (b *Base[R, E]) Exec(ctx context.Context, pk int64, values Values, opts ...Option) error {
	if len(values) == 0 {
		return nil
	}

	q := b.resolve(opts).db.NewUpdate().Model((*R)(nil))

	cols := make([]string, 0, len(values))
	for col := range values {
		cols = append(cols, col)
	}
	slices.Sort(cols)

	for _, col := range cols {
		q = q.Set("? = ?", bun.Ident(col), values[col])
	}

	_, err := q.Where("? = ?", bun.Ident(b.cfg.PK), pk).Exec(ctx)
	if err != nil {
		return fmt.Errorf("update %s: %w", b.cfg.Table, core.ClassifyStoreError(err))
	}

	return nil
}

func (b *Base[R, E]) resolve(opts []Option) *options {
	o := &options{db: b.db}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (b *Base[R, E]) buildQuery(o *options) *bun.SelectQuery {
	switch {
	case o.baseQuery != nil:
		return o.baseQuery(o.db)
	case b.cfg.Scope != nil:
		return b.cfg.Scope(o.db)
	default:
		return o.db.NewSelect().Model((*R)(nil))
	}
}

func (b *Base[R, E]) fetchKeys(ctx context.Context, o *options, pks []int64) ([]*R, error) {
	var rows []*R
	err := b.buildQuery(o).
		Where("? IN (?)", bun.Ident(b.cfg.PK), bun.In(pks)).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("mget %s: %w", b.cfg.Table, err)
	}
	return rows, nil
}

func (b *Base[R, E]) hydrate(ctx context.Context, db bun.IDB, rows []*R) ([]*E, error) {
	if len(rows) == 0 {
		return []*E{}, nil
	}

	if b.cfg.Hydrate == nil {
		entities, ok := any(rows).([]*E)
		if !ok {
			return nil, fmt.Errorf("hydrate %s: no hydrator and row type is not the entity type", b.cfg.Table)
		}
		return entities, nil
	}

	entities, err := b.cfg.Hydrate(ctx, db, rows)
	if err != nil {
		return nil, fmt.Errorf("hydrate %s: %w", b.cfg.Table, err)
	}

	if len(entities) != len(rows) {
		return nil, fmt.Errorf(
			"hydrate %s: got %d entities for %d rows",
			b.cfg.Table,
			len(entities),
			len(rows),
		)
	}

	return entities, nil
}

func (b *Base[R, E]) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return b.tracer.Start(ctx, "repository."+b.cfg.Table+"."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.sql.table", b.cfg.Table),
			attribute.String("db.operation", op),
		),
	)
}

func finish(ctx context.Context, span trace.Span, err error) {
	if err != nil {
		core.RecordError(ctx, err)
	}
	span.End()
}

// spread lays found values out in request order. A key requested more
// than once gets a shallow copy per extra slot, so slots never alias;
// hydrated relations inside the copies are still shared.
func spread[T any](pks []int64, byKey map[int64]*T) []*T {
	out := make([]*T, len(pks))
	used := make(map[int64]bool, len(byKey))

	for i, pk := range pks {
		v, ok := byKey[pk]
		if !ok {
			continue
		}
		if used[pk] {
			cp := *v
			v = &cp
		}
		used[pk] = true
		out[i] = v
	}

	return out
}
