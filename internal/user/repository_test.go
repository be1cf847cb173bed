// AngelaMos | 2026
// repository_test.go

package user_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/carterperez-dev/templates/go-htmx/internal/core"
	"github.com/carterperez-dev/templates/go-htmx/internal/dbtest"
	"github.com/carterperez-dev/templates/go-htmx/internal/model"
	"github.com/carterperez-dev/templates/go-htmx/internal/repository"
	"github.com/carterperez-dev/templates/go-htmx/internal/store"
)

type queryCounter struct {
	n atomic.Int64
}

func (c *queryCounter) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (c *queryCounter) AfterQuery(_ context.Context, _ *bun.QueryEvent) {
	c.n.Add(1)
}

func insertUser(t *testing.T, s *store.Store, email string) *model.UserWithPosts {
	t.Helper()
	u, err := s.Users.Insert(context.Background(), &model.User{Email: email, Password: "secret"})
	require.NoError(t, err)
	return u
}

func insertPost(t *testing.T, s *store.Store, userID int64, data string) *model.PostWithUser {
	t.Helper()
	p, err := s.Posts.Insert(context.Background(), &model.Post{UserID: userID, Data: data})
	require.NoError(t, err)
	return p
}

func TestInsertedUserIsActiveWithNoPosts(t *testing.T) {
	s := store.New(dbtest.New(t))

	u := insertUser(t, s, "new@example.com")

	got, err := s.Users.Get(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.False(t, got.Deleted)
	assert.NotNil(t, got.Posts)
	assert.Empty(t, got.Posts)
	assert.Empty(t, got.Password, "password is never projected")
}

func TestAbsentUser(t *testing.T) {
	s := store.New(dbtest.New(t))
	ctx := context.Background()

	got, err := s.Users.Get(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.Users.GetOrFail(ctx, 404)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMGetFollowsRequestOrder(t *testing.T) {
	s := store.New(dbtest.New(t))

	a := insertUser(t, s, "a@example.com")
	b := insertUser(t, s, "b@example.com")
	c := insertUser(t, s, "c@example.com")
	insertPost(t, s, b.ID, "from b")

	got, err := s.Users.MGet(context.Background(), []int64{c.ID, a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "c@example.com", got[0].Email)
	assert.Equal(t, "a@example.com", got[1].Email)
	assert.Equal(t, "b@example.com", got[2].Email)
	assert.Len(t, got[2].Posts, 1)
	assert.Empty(t, got[0].Posts)
}

func TestDeleteHidesUserButKeepsPosts(t *testing.T) {
	s := store.New(dbtest.New(t))
	ctx := context.Background()

	keep := insertUser(t, s, "keep@example.com")
	gone := insertUser(t, s, "gone@example.com")
	insertPost(t, s, gone.ID, "one")
	insertPost(t, s, gone.ID, "two")

	before, err := s.Posts.Count(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Users.Delete(ctx, gone.ID))

	list, err := s.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)

	after, err := s.Posts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	got, err := s.Users.Get(ctx, gone.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := s.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var deleted bool
	err = s.DB.NewSelect().
		Model((*model.User)(nil)).
		Column(model.ColumnDeleted).
		Where("? = ?", bun.Ident(model.ColumnID), gone.ID).
		Scan(ctx, &deleted)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestInsertedPostAppearsOnOwner(t *testing.T) {
	s := store.New(dbtest.New(t))
	ctx := context.Background()

	u := insertUser(t, s, "owner@example.com")
	other := insertUser(t, s, "other@example.com")
	p := insertPost(t, s, u.ID, "hello")
	insertPost(t, s, other.ID, "not mine")

	got, err := s.Users.GetOrFail(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.Posts, 1)
	assert.Equal(t, p.ID, got.Posts[0].ID)
	assert.Equal(t, "hello", got.Posts[0].Data)
}

func TestDeletedPostLeavesOwner(t *testing.T) {
	s := store.New(dbtest.New(t))
	ctx := context.Background()

	u := insertUser(t, s, "owner@example.com")
	p := insertPost(t, s, u.ID, "temporary")

	require.NoError(t, s.Posts.Delete(ctx, p.ID))

	gone, err := s.Posts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	owner, err := s.Users.GetOrFail(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, owner.Posts)
}

func TestUpdateEmailRoundTrip(t *testing.T) {
	s := store.New(dbtest.New(t))
	ctx := context.Background()

	u := insertUser(t, s, "before@example.com")
	insertPost(t, s, u.ID, "stays")

	_, err := s.Users.Update(ctx, u.ID, repository.Values{model.ColumnEmail: "x"})
	require.NoError(t, err)

	got, err := s.Users.GetOrFail(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Email)
	assert.Equal(t, u.ID, got.ID)
	assert.False(t, got.Deleted)
	assert.Len(t, got.Posts, 1)
}

func TestHydrationIsBatched(t *testing.T) {
	db := dbtest.New(t)
	s := store.New(db)

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		u := insertUser(t, s, email)
		insertPost(t, s, u.ID, email+" 1")
		insertPost(t, s, u.ID, email+" 2")
	}

	counter := &queryCounter{}
	db.AddQueryHook(counter)

	list, err := s.Users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, u := range list {
		assert.Len(t, u.Posts, 2)
	}

	// users, post ids, posts
	assert.Equal(t, int64(3), counter.n.Load())
}
