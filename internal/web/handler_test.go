// AngelaMos | 2026
// handler_test.go

package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/go-htmx/internal/dbtest"
	"github.com/carterperez-dev/templates/go-htmx/internal/model"
	"github.com/carterperez-dev/templates/go-htmx/internal/store"
	"github.com/carterperez-dev/templates/go-htmx/internal/view"
	"github.com/carterperez-dev/templates/go-htmx/internal/web"
)

func newSite(t *testing.T) (*store.Store, http.Handler) {
	t.Helper()

	s := store.New(dbtest.New(t))
	renderer, err := view.New("Board")
	require.NoError(t, err)

	r := chi.NewRouter()
	web.NewHandler(s.UserService(), s.PostService(), renderer).RegisterRoutes(r)

	return s, r
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func addUser(t *testing.T, s *store.Store, email string) int64 {
	t.Helper()
	u, err := s.Users.Insert(context.Background(), &model.User{Email: email, Password: "secret"})
	require.NoError(t, err)
	return u.ID
}

func TestIndexListsActiveUsers(t *testing.T) {
	s, site := newSite(t)
	addUser(t, s, "shown@example.com")
	hidden := addUser(t, s, "hidden@example.com")
	require.NoError(t, s.Users.Delete(context.Background(), hidden))

	rec := serve(site, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "shown@example.com")
	assert.NotContains(t, rec.Body.String(), "hidden@example.com")
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
}

func TestUserPosts(t *testing.T) {
	s, site := newSite(t)
	uid := addUser(t, s, "poster@example.com")
	_, err := s.Posts.Insert(context.Background(), &model.Post{UserID: uid, Data: "hello board"})
	require.NoError(t, err)

	rec := serve(site, http.MethodGet, "/users/"+strconv.FormatInt(uid, 10)+"/posts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "poster@example.com (1)")
	assert.Contains(t, rec.Body.String(), "hello board")
	assert.Regexp(t, `^\d+ms$`, rec.Header().Get(web.LoadTimeHeader))
}

func TestUserPostsMissing(t *testing.T) {
	_, site := newSite(t)

	rec := serve(site, http.MethodGet, "/users/41/posts")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(web.LoadTimeHeader))

	rec = serve(site, http.MethodGet, "/users/forty/posts")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUserFragment(t *testing.T) {
	s, site := newSite(t)

	rec := serve(site, http.MethodPost, "/users")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.NotContains(t, body, "<html>")
	assert.Contains(t, body, "@example.com (0)")
	assert.NotEmpty(t, rec.Header().Get(web.LoadTimeHeader))

	n, err := s.Users.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeleteUser(t *testing.T) {
	s, site := newSite(t)
	uid := addUser(t, s, "leaving@example.com")
	path := "/users/" + strconv.FormatInt(uid, 10)

	rec := serve(site, http.MethodDelete, path)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(web.LoadTimeHeader))

	rec = serve(site, http.MethodDelete, path)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAndDeletePost(t *testing.T) {
	s, site := newSite(t)
	uid := addUser(t, s, "author@example.com")

	rec := serve(site, http.MethodPost, "/users/"+strconv.FormatInt(uid, 10)+"/posts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Post ")

	posts, err := s.Posts.List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)

	rec = serve(site, http.MethodDelete, "/posts/"+strconv.FormatInt(posts[0].ID, 10))
	require.Equal(t, http.StatusOK, rec.Code)

	n, err := s.Posts.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	rec = serve(site, http.MethodDelete, "/posts/"+strconv.FormatInt(posts[0].ID, 10))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePostForMissingUser(t *testing.T) {
	_, site := newSite(t)

	rec := serve(site, http.MethodPost, "/users/5/posts")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
