package repos

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sundayezeilo/repostore/internal/errx"
	"github.com/sundayezeilo/repostore/internal/httpx"
)

// HTTPRepoRequest is the JSON body accepted by create and update.
// Fields are kept raw so any JSON value round-trips unchanged.
type HTTPRepoRequest struct {
	Title json.RawMessage `json:"title"`
	URL   json.RawMessage `json:"url"`
	Techs json.RawMessage `json:"techs"`
	Likes json.RawMessage `json:"likes"`
}

// LikesResponse is returned by like and by the likes-only update.
type LikesResponse struct {
	Likes int64 `json:"likes"`
}

// Handler provides HTTP handlers for the repository catalog.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service: cfg.Service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the catalog under /repositories.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/repositories", func(r chi.Router) {
		r.Get("/", h.ListRepos)
		r.Post("/", h.CreateRepo)
		r.Put("/{id}", h.UpdateRepo)
		r.Delete("/{id}", h.DeleteRepo)
		r.Post("/{id}/like", h.LikeRepo)
	})
}

// ListRepos handles GET /repositories.
func (h *Handler) ListRepos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	repos, err := h.service.List(ctx)
	if err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, repos)
}

// CreateRepo handles POST /repositories.
func (h *Handler) CreateRepo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, ok := h.decode(ctx, logger, w, r)
	if !ok {
		return
	}

	repo, err := h.service.Create(ctx, CreateRequest{
		Title: req.Title,
		URL:   req.URL,
		Techs: req.Techs,
	})
	if err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "repository created",
		"repo_id", repo.ID.String(),
		"techs", len(repo.Techs),
	)

	httpx.WriteJSON(w, http.StatusOK, repo)
}

// UpdateRepo handles PUT /repositories/{id}.
func (h *Handler) UpdateRepo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, ok := h.decode(ctx, logger, w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	res, err := h.service.Update(ctx, id, UpdateRequest{
		Title: req.Title,
		URL:   req.URL,
		Techs: req.Techs,
		Likes: req.Likes,
	})
	if err != nil {
		h.handleError(ctx, logger.With("repo_id", id), w, err)
		return
	}

	if res.LikesOnly {
		logger.DebugContext(ctx, "update answered with current likes", "repo_id", id)
		httpx.WriteJSON(w, http.StatusOK, LikesResponse{Likes: res.Likes})
		return
	}

	logger.InfoContext(ctx, "repository updated", "repo_id", res.Repo.ID.String())
	httpx.WriteJSON(w, http.StatusOK, res.Repo)
}

// DeleteRepo handles DELETE /repositories/{id}.
func (h *Handler) DeleteRepo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(ctx, id); err != nil {
		h.handleError(ctx, logger.With("repo_id", id), w, err)
		return
	}

	logger.InfoContext(ctx, "repository deleted", "repo_id", id)
	httpx.WriteNoContent(w)
}

// LikeRepo handles POST /repositories/{id}/like.
func (h *Handler) LikeRepo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id := chi.URLParam(r, "id")
	likes, err := h.service.Like(ctx, id)
	if err != nil {
		h.handleError(ctx, logger.With("repo_id", id), w, err)
		return
	}

	logger.InfoContext(ctx, "repository liked", "repo_id", id, "likes", likes)
	httpx.WriteJSON(w, http.StatusOK, LikesResponse{Likes: likes})
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

// decode reads the request body. Unknown fields are ignored. An empty body, a
// non-object JSON body and a body sent without an application/json
// Content-Type all count as {}. On failure the 400 response is already written.
func (h *Handler) decode(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, r *http.Request) (HTTPRepoRequest, bool) {
	req, err := httpx.DecodeJSON[HTTPRepoRequest](r,
		httpx.IgnoreNonJSONBody(),
		httpx.AllowUnknownFields(),
		httpx.AllowEmptyBody(),
		httpx.AllowNonObjectBody(),
	)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return HTTPRepoRequest{}, false
	}
	return req, true
}

// handleError renders service errors. The three catalog errors are always 400
// with their own message; anything else maps by kind.
func (h *Handler) handleError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
	}

	switch {
	case errors.Is(err, ErrInvalidID):
		logger.WarnContext(ctx, "invalid repository id", logAttrs...)
		httpx.WriteError(w, http.StatusBadRequest, ErrInvalidID.Error())

	case errors.Is(err, ErrNotFound):
		logger.WarnContext(ctx, "repository not found", logAttrs...)
		httpx.WriteError(w, http.StatusBadRequest, ErrNotFound.Error())

	case errors.Is(err, ErrInvalidTechs):
		logger.WarnContext(ctx, "invalid techs", logAttrs...)
		httpx.WriteError(w, http.StatusBadRequest, ErrInvalidTechs.Error())

	case kind == errx.Unavailable:
		logger.ErrorContext(ctx, "repository store unavailable", logAttrs...)
		httpx.WriteError(w, httpx.ErrorKindToStatus(kind), httpx.ErrorKindMessage(kind))

	default:
		logger.ErrorContext(ctx, "unexpected repository error", logAttrs...)
		httpx.WriteError(w, httpx.ErrorKindToStatus(kind), httpx.ErrorKindMessage(kind))
	}
}
