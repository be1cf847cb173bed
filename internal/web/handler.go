// AngelaMos | 2026
// handler.go

// Package web serves the HTMX pages and fragments.
package web

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/go-htmx/internal/core"
	"github.com/carterperez-dev/templates/go-htmx/internal/post"
	"github.com/carterperez-dev/templates/go-htmx/internal/user"
	"github.com/carterperez-dev/templates/go-htmx/internal/view"
)

const LoadTimeHeader = "X-User-Load-Time"

type Handler struct {
	users *user.Service
	posts *post.Service
	view  *view.Renderer
}

func NewHandler(users *user.Service, posts *post.Service, renderer *view.Renderer) *Handler {
	return &Handler{
		users: users,
		posts: posts,
		view:  renderer,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)

	r.Post("/users", h.CreateUser)
	r.Get("/users/{userID}/posts", h.UserPosts)
	r.Post("/users/{userID}/posts", h.CreatePost)
	r.Delete("/users/{userID}", h.DeleteUser)

	r.Delete("/posts/{postID}", h.DeletePost)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.page(w, r, view.UsersPage, users)
}

func (h *Handler) UserPosts(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "userID")
	if !ok {
		return
	}

	start := time.Now()
	u, err := h.users.GetOrFail(r.Context(), id)
	setLoadTime(w, start)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.page(w, r, view.PostsPage, u)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	u, err := h.users.Create(r.Context())
	setLoadTime(w, start)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.fragment(w, r, view.UserFragment, u)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "userID")
	if !ok {
		return
	}

	start := time.Now()
	err := h.users.Delete(r.Context(), id)
	setLoadTime(w, start)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "userID")
	if !ok {
		return
	}

	p, err := h.posts.Create(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.fragment(w, r, view.PostFragment, p)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "postID")
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := h.view.Page(&buf, name, data); err != nil {
		h.fail(w, r, err)
		return
	}
	writeHTML(w, &buf)
}

func (h *Handler) fragment(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := h.view.Fragment(&buf, name, data); err != nil {
		h.fail(w, r, err)
		return
	}
	writeHTML(w, &buf)
}

// fail answers with a plain-text message. Server errors keep the error
// text so the HTMX client can show it.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr := core.ToAppError(err)

	if appErr.Status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "page request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}

	http.Error(w, appErr.Message, appErr.Status)
}

func writeHTML(w http.ResponseWriter, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w) //nolint:errcheck // best-effort response write
}

func setLoadTime(w http.ResponseWriter, start time.Time) {
	w.Header().Set(LoadTimeHeader, strconv.FormatInt(time.Since(start).Milliseconds(), 10)+"ms")
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
