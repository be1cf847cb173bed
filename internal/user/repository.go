// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/carterperez-dev/templates/go-htmx/internal/model"
	"github.com/carterperez-dev/templates/go-htmx/internal/repository"
)

// PostSource is the slice of the posts repository users hydrate from.
type PostSource interface {
	MGetPartial(ctx context.Context, ids []int64, opts ...repository.Option) ([]*model.Post, error)
}

type Repository interface {
	Get(ctx context.Context, id int64, opts ...repository.Option) (*model.UserWithPosts, error)
	GetOrFail(ctx context.Context, id int64, opts ...repository.Option) (*model.UserWithPosts, error)
	MGet(ctx context.Context, ids []int64, opts ...repository.Option) ([]*model.UserWithPosts, error)
	MGetPartial(ctx context.Context, ids []int64, opts ...repository.Option) ([]*model.User, error)
	List(ctx context.Context, opts ...repository.Option) ([]*model.UserWithPosts, error)
	Count(ctx context.Context, opts ...repository.Option) (int, error)
	Insert(ctx context.Context, u *model.User, opts ...repository.Option) (*model.UserWithPosts, error)
	Update(
		ctx context.Context,
		id int64,
		values repository.Values,
		opts ...repository.Option,
	) (*model.UserWithPosts, error)
	Delete(ctx context.Context, id int64, opts ...repository.Option) error
}

type userRepository struct {
	*repository.Base[model.User, model.UserWithPosts]
	posts func() PostSource
}

// NewRepository builds the users repository. posts is resolved on first
// hydration, so it may return a repository constructed later.
func NewRepository(db bun.IDB, posts func() PostSource) Repository {
	r := &userRepository{posts: posts}
	r.Base = repository.New(db, repository.Config[model.User, model.UserWithPosts]{
		Table:   model.UsersTable,
		PK:      model.ColumnID,
		KeyOf:   func(u *model.User) int64 { return u.ID },
		Scope:   activeUsers,
		Hydrate: r.withPosts,
	})
	return r
}

// activeUsers never projects the password column.
func activeUsers(db bun.IDB) *bun.SelectQuery {
	return db.NewSelect().
		Model((*model.User)(nil)).
		Column(model.ColumnID, model.ColumnEmail, model.ColumnDeleted).
		Where("? = ?", bun.Ident(model.ColumnDeleted), false)
}

func (r *userRepository) withPosts(
	ctx context.Context,
	db bun.IDB,
	users []*model.User,
) ([]*model.UserWithPosts, error) {
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	var postIDs []int64
	err := db.NewSelect().
		Model((*model.Post)(nil)).
		Column(model.ColumnID).
		Where("? IN (?)", bun.Ident(model.ColumnUserID), bun.In(ids)).
		OrderExpr("? ASC", bun.Ident(model.ColumnID)).
		Scan(ctx, &postIDs)
	if err != nil {
		return nil, fmt.Errorf("load post ids: %w", err)
	}

	posts, err := r.posts().MGetPartial(ctx, postIDs, repository.WithTx(db))
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}

	byOwner := make(map[int64][]*model.Post, len(users))
	for _, p := range posts {
		if p == nil {
			continue
		}
		byOwner[p.UserID] = append(byOwner[p.UserID], p)
	}

	out := make([]*model.UserWithPosts, len(users))
	for i, u := range users {
		owned := byOwner[u.ID]
		if owned == nil {
			owned = []*model.Post{}
		}
		out[i] = &model.UserWithPosts{User: *u, Posts: owned}
	}

	return out, nil
}

// Delete marks the user deleted. The row and its posts stay.
func (r *userRepository) Delete(ctx context.Context, id int64, opts ...repository.Option) error {
	err := r.Exec(ctx, id, repository.Values{model.ColumnDeleted: true}, opts...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
