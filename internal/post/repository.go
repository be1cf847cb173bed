// AngelaMos | 2026
// repository.go

package post

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/carterperez-dev/templates/go-htmx/internal/model"
	"github.com/carterperez-dev/templates/go-htmx/internal/repository"
)

// UserSource is the slice of the users repository posts hydrate from. It
// only ever sees active users.
type UserSource interface {
	MGetPartial(ctx context.Context, ids []int64, opts ...repository.Option) ([]*model.User, error)
}

type Repository interface {
	Get(ctx context.Context, id int64, opts ...repository.Option) (*model.PostWithUser, error)
	GetOrFail(ctx context.Context, id int64, opts ...repository.Option) (*model.PostWithUser, error)
	MGet(ctx context.Context, ids []int64, opts ...repository.Option) ([]*model.PostWithUser, error)
	MGetPartial(ctx context.Context, ids []int64, opts ...repository.Option) ([]*model.Post, error)
	List(ctx context.Context, opts ...repository.Option) ([]*model.PostWithUser, error)
	Count(ctx context.Context, opts ...repository.Option) (int, error)
	Insert(ctx context.Context, p *model.Post, opts ...repository.Option) (*model.PostWithUser, error)
	Update(
		ctx context.Context,
		id int64,
		values repository.Values,
		opts ...repository.Option,
	) (*model.PostWithUser, error)
	Delete(ctx context.Context, id int64, opts ...repository.Option) error
	Owner(ctx context.Context, userID int64, opts ...repository.Option) (*model.User, error)
}

type postRepository struct {
	*repository.Base[model.Post, model.PostWithUser]
	users func() UserSource
}

func NewRepository(db bun.IDB, users func() UserSource) Repository {
	r := &postRepository{users: users}
	r.Base = repository.New(db, repository.Config[model.Post, model.PostWithUser]{
		Table:   model.PostsTable,
		PK:      model.ColumnID,
		KeyOf:   func(p *model.Post) int64 { return p.ID },
		Hydrate: r.withUser,
	})
	return r
}

func (r *postRepository) withUser(
	ctx context.Context,
	db bun.IDB,
	posts []*model.Post,
) ([]*model.PostWithUser, error) {
	seen := make(map[int64]struct{}, len(posts))
	ownerIDs := make([]int64, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		ownerIDs = append(ownerIDs, p.UserID)
	}

	owners, err := r.users().MGetPartial(ctx, ownerIDs, repository.WithTx(db))
	if err != nil {
		return nil, fmt.Errorf("load owners: %w", err)
	}

	byID := make(map[int64]*model.User, len(owners))
	for _, u := range owners {
		if u != nil {
			byID[u.ID] = u
		}
	}

	out := make([]*model.PostWithUser, len(posts))
	for i, p := range posts {
		out[i] = &model.PostWithUser{Post: *p, User: byID[p.UserID]}
	}

	return out, nil
}

// Owner returns the active user with id userID, or nil.
func (r *postRepository) Owner(
	ctx context.Context,
	userID int64,
	opts ...repository.Option,
) (*model.User, error) {
	owners, err := r.users().MGetPartial(ctx, []int64{userID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}
	return owners[0], nil
}

// Delete removes the row.
func (r *postRepository) Delete(ctx context.Context, id int64, opts ...repository.Option) error {
	_, err := r.DB(opts...).NewDelete().
		Model((*model.Post)(nil)).
		Where("? = ?", bun.Ident(model.ColumnID), id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
