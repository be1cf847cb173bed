// AngelaMos | 2026
// store.go

// Package store wires the users and posts repositories to each other.
package store

import (
	"github.com/uptrace/bun"

	"github.com/carterperez-dev/templates/go-htmx/internal/post"
	"github.com/carterperez-dev/templates/go-htmx/internal/user"
)

// Store owns one repository per table over a shared handle. Each
// repository reaches the other through the registry, so construction
// order does not matter.
type Store struct {
	DB    *bun.DB
	Users user.Repository
	Posts post.Repository
}

func New(db *bun.DB) *Store {
	s := &Store{DB: db}

	s.Users = user.NewRepository(db, func() user.PostSource { return s.Posts })
	s.Posts = post.NewRepository(db, func() post.UserSource { return s.Users })

	return s
}

func (s *Store) UserService() *user.Service {
	return user.NewService(s.DB, s.Users)
}

func (s *Store) PostService() *post.Service {
	return post.NewService(s.DB, s.Posts)
}
