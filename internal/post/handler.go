// AngelaMos | 2026
// handler.go

package post

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/go-htmx/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{postID}", h.Get)
		r.Patch("/{postID}", h.Update)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToPostResponseList(posts))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if p == nil {
		core.NotFound(w, "post")
		return
	}

	core.OK(w, ToPostResponse(p))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	p, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToPostResponse(p))
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	if err != nil {
		core.BadRequest(w, "invalid post id")
		return 0, false
	}
	return id, true
}
