// AngelaMos | 2026
// options.go

package repository

import (
	"github.com/uptrace/bun"
)

// BaseQuery builds the starting SELECT for an operation on db.
type BaseQuery func(db bun.IDB) *bun.SelectQuery

type Option func(*options)

type options struct {
	db        bun.IDB
	baseQuery BaseQuery
}

// WithBaseQuery replaces the repository scope for a single call.
func WithBaseQuery(q BaseQuery) Option {
	return func(o *options) {
		o.baseQuery = q
	}
}

// WithTx runs the call, and any hydration it triggers, on tx instead of
// the shared handle.
func WithTx(tx bun.IDB) Option {
	return func(o *options) {
		if tx != nil {
			o.db = tx
		}
	}
}
