// AngelaMos | 2026
// handler_test.go

package admin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/go-htmx/internal/admin"
	"github.com/carterperez-dev/templates/go-htmx/internal/dbtest"
	"github.com/carterperez-dev/templates/go-htmx/internal/model"
	"github.com/carterperez-dev/templates/go-htmx/internal/store"
)

func TestSystemStats(t *testing.T) {
	db := dbtest.Open(t)
	s := store.New(db.Bun)
	ctx := context.Background()

	u, err := s.Users.Insert(ctx, &model.User{Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = s.Posts.Insert(ctx, &model.Post{UserID: u.ID, Data: "one"})
	require.NoError(t, err)
	_, err = s.Users.Insert(ctx, &model.User{Email: "b@example.com", Password: "pw"})
	require.NoError(t, err)

	h := admin.NewHandler(admin.HandlerConfig{
		DBStats: db.Stats,
		DBPing:  db.Ping,
		Users:   s.UserService(),
		Posts:   s.PostService(),
	})

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body admin.SystemStatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Database.Healthy)
	require.NotNil(t, body.Database.Stats)
	assert.Equal(t, 1, body.Database.Stats.MaxOpenConnections)
	assert.Nil(t, body.Redis)
	assert.Equal(t, 2, body.Entities.ActiveUsers)
	assert.Equal(t, 1, body.Entities.Posts)
	assert.NotEmpty(t, body.Runtime.GoVersion)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats/entities", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"active_users":2,"posts":1}`, rec.Body.String())
}

func TestRedisStatsWithoutRedis(t *testing.T) {
	r := chi.NewRouter()
	admin.NewHandler(admin.HandlerConfig{}).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats/redis", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats/runtime", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rt admin.RuntimeStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rt))
	assert.Positive(t, rt.NumCPU)
	assert.NotEmpty(t, rt.Uptime)
}
