// AngelaMos | 2026
// post_test.go

package post_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/go-htmx/internal/core"
	"github.com/carterperez-dev/templates/go-htmx/internal/dbtest"
	"github.com/carterperez-dev/templates/go-htmx/internal/model"
	"github.com/carterperez-dev/templates/go-htmx/internal/post"
	"github.com/carterperez-dev/templates/go-htmx/internal/store"
)

func insertUser(t *testing.T, s *store.Store, email string) int64 {
	t.Helper()
	u, err := s.Users.Insert(context.Background(), &model.User{Email: email, Password: "secret"})
	require.NoError(t, err)
	return u.ID
}

func TestPostCarriesOwner(t *testing.T) {
	s := store.New(dbtest.New(t))
	ctx := context.Background()
	uid := insertUser(t, s, "owner@example.com")

	p, err := s.Posts.Insert(ctx, &model.Post{UserID: uid, Data: "hi"})
	require.NoError(t, err)
	require.NotNil(t, p.User)
	assert.Equal(t, uid, p.User.ID)
	assert.Equal(t, "owner@example.com", p.User.Email)
	assert.Empty(t, p.User.Password)
}

func TestListSharesOwners(t *testing.T) {
	s := store.New(dbtest.New(t))
	ctx := context.Background()
	a := insertUser(t, s, "a@example.com")
	b := insertUser(t, s, "b@example.com")

	for _, uid := range []int64{a, b, a} {
		_, err := s.Posts.Insert(ctx, &model.Post{UserID: uid, Data: "x"})
		require.NoError(t, err)
	}

	list, err := s.Posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, a, list[0].User.ID)
	assert.Equal(t, b, list[1].User.ID)
	assert.Equal(t, a, list[2].User.ID)
}

func TestPostOfDeletedOwnerHasNoUser(t *testing.T) {
	s := store.New(dbtest.New(t))
	ctx := context.Background()
	uid := insertUser(t, s, "leaving@example.com")

	p, err := s.Posts.Insert(ctx, &model.Post{UserID: uid, Data: "orphan"})
	require.NoError(t, err)

	require.NoError(t, s.Users.Delete(ctx, uid))

	got, err := s.Posts.GetOrFail(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "orphan", got.Data)
	assert.Equal(t, uid, got.UserID)
	assert.Nil(t, got.User)
}

func TestServiceCreate(t *testing.T) {
	s := store.New(dbtest.New(t))
	svc := s.PostService()
	ctx := context.Background()
	uid := insertUser(t, s, "author@example.com")

	p, err := svc.Create(ctx, uid)
	require.NoError(t, err)
	assert.Regexp(t, `^Post \d+$`, p.Data)
	assert.Equal(t, uid, p.UserID)

	owner, err := s.Users.GetOrFail(ctx, uid)
	require.NoError(t, err)
	require.Len(t, owner.Posts, 1)
	assert.Equal(t, p.ID, owner.Posts[0].ID)
}

func TestServiceCreateNeedsActiveOwner(t *testing.T) {
	s := store.New(dbtest.New(t))
	svc := s.PostService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 12345)
	assert.ErrorIs(t, err, core.ErrNotFound)

	uid := insertUser(t, s, "soon-gone@example.com")
	require.NoError(t, s.Users.Delete(ctx, uid))

	_, err = svc.Create(ctx, uid)
	assert.ErrorIs(t, err, core.ErrNotFound)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestServiceDeleteIsPermanent(t *testing.T) {
	s := store.New(dbtest.New(t))
	svc := s.PostService()
	ctx := context.Background()
	uid := insertUser(t, s, "author@example.com")

	p, err := svc.Create(ctx, uid)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, svc.Delete(ctx, p.ID), core.ErrNotFound)
}

func TestServiceUpdate(t *testing.T) {
	s := store.New(dbtest.New(t))
	svc := s.PostService()
	ctx := context.Background()
	uid := insertUser(t, s, "author@example.com")

	p, err := svc.Create(ctx, uid)
	require.NoError(t, err)

	data := "edited"
	got, err := svc.Update(ctx, p.ID, post.UpdatePostRequest{Data: &data})
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Data)
	assert.Equal(t, uid, got.User.ID)

	long := strings.Repeat("x", 256)
	_, err = svc.Update(ctx, p.ID, post.UpdatePostRequest{Data: &long})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestHandler(t *testing.T) {
	s := store.New(dbtest.New(t))
	uid := insertUser(t, s, "api@example.com")
	p, err := s.PostService().Create(context.Background(), uid)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		post.NewHandler(s.PostService()).RegisterRoutes(r)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts/"+strconv.FormatInt(p.ID, 10), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body post.PostResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, p.ID, body.ID)
	require.NotNil(t, body.User)
	assert.Equal(t, "api@example.com", body.User.Email)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []post.PostResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 1)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts/999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts/x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPatch,
		"/api/posts/"+strconv.FormatInt(p.ID, 10),
		strings.NewReader(`{"data":"via api"}`),
	))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "via api", body.Data)
}

func TestServiceUpdateMissing(t *testing.T) {
	s := store.New(dbtest.New(t))
	svc := s.PostService()
	ctx := context.Background()

	data := "nowhere"
	_, err := svc.Update(ctx, 404, post.UpdatePostRequest{Data: &data})
	assert.ErrorIs(t, err, core.ErrNotFound)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
