package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/kurosawa-movies/internal/auth"
	"github.com/prn-tf/kurosawa-movies/internal/service"
)

// MovieHandler handles catalog endpoints. All of them sit behind the auth
// middleware; the write endpoints additionally require the staff role,
// enforced by the catalog service.
type MovieHandler struct {
	catalog *service.CatalogService
	queries *service.MovieQueryService
	logger  zerolog.Logger
}

// NewMovieHandler creates a new MovieHandler.
func NewMovieHandler(catalog *service.CatalogService, queries *service.MovieQueryService, logger zerolog.Logger) *MovieHandler {
	return &MovieHandler{
		catalog: catalog,
		queries: queries,
		logger:  logger.With().Str("handler", "movie").Logger(),
	}
}

// RegisterRoutes registers the catalog routes.
func (h *MovieHandler) RegisterRoutes(r chi.Router) {
	r.Post("/movies/", h.handleCreate)
	r.Put("/movies/{id}/", h.handleUpdate)
	r.Delete("/movies/{id}/", h.handleDelete)
	r.Get("/movies/{id}/view/", h.handleGet)
	r.Get("/movies/list/", h.handleList)
	r.Get("/movies/search/", h.handleSearch)
}

type movieRequest struct {
	Name       string   `json:"name"`
	Director   string   `json:"director"`
	IMDBScore  *float64 `json:"imdb_score"`
	Popularity *float64 `json:"popularity"`
	Genres     []string `json:"genre"`
}

func (r movieRequest) toInput() service.MovieInput {
	return service.MovieInput{
		Name:       r.Name,
		Director:   r.Director,
		IMDBScore:  r.IMDBScore,
		Popularity: r.Popularity,
		Genres:     r.Genres,
	}
}

func (h *MovieHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req movieRequest
	if !decodeBody(w, r, &req) {
		return
	}

	movie, err := h.catalog.Create(r.Context(), auth.PrincipalFromContext(r.Context()), req.toInput())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, map[string]any{"movie": movie})
}

func (h *MovieHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req movieRequest
	if !decodeBody(w, r, &req) {
		return
	}

	movie, err := h.catalog.Update(r.Context(), auth.PrincipalFromContext(r.Context()), id, req.toInput())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, map[string]any{"movie": movie})
}

func (h *MovieHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.catalog.Delete(r.Context(), auth.PrincipalFromContext(r.Context()), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, nil)
}

func (h *MovieHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	movie, err := h.queries.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, map[string]any{"movie": movie})
}

func (h *MovieHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.queries.List(r.Context(), service.ListInput{
		Sort:     q.Get("sort"),
		Criteria: q.Get("sort_criteria"),
		Page:     parsePage(q.Get("page")),
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writePage(w, page)
}

func (h *MovieHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.queries.Search(r.Context(), service.SearchInput{
		Keyword:  q.Get("keyword"),
		Type:     q.Get("type"),
		Sort:     q.Get("sort"),
		Criteria: q.Get("sort_criteria"),
		Page:     parsePage(q.Get("page")),
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writePage(w, page)
}

func writePage(w http.ResponseWriter, page *service.MoviePage) {
	writeSuccess(w, map[string]any{
		"count":     page.Total,
		"page":      page.Page,
		"page_size": page.PageSize,
		"movies":    page.Movies,
	})
}

// parsePage parses the page query parameter; anything unusable means the
// first page.
func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
