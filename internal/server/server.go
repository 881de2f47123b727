package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pixgrid/pix-grabber/internal/commons"
	"github.com/pixgrid/pix-grabber/internal/model"
)

// Request bounds mirroring the provider's practical result depth
const (
	MinPage        = 1
	MaxPage        = 10
	DefaultPage    = 1
	MinPerPage     = 1
	MaxPerPage     = 50
	DefaultPerPage = 50

	// DefaultAllowedOrigin is the Vite dev server the web frontend runs on
	DefaultAllowedOrigin = "http://localhost:5173"

	// imageFetchTimeout bounds a single thumbnail download for /download
	imageFetchTimeout = 30 * time.Second

	corsMaxAge = 300
)

// Provider is the slice of the Commons client the proxy needs.
type Provider interface {
	TotalHits(ctx context.Context, query string) (int, error)
	SearchPage(ctx context.Context, query string, page, perPage int) ([]model.ResultItem, error)
}

// Config carries the externally tunable server options
type Config struct {
	// AllowedOrigins for CORS; empty means DefaultAllowedOrigin only
	AllowedOrigins []string
}

// Server holds the HTTP server dependencies
type Server struct {
	provider Provider
	fetcher  *http.Client
	router   chi.Router
}

// New creates a new proxy server around a search provider
func New(provider Provider, cfg Config) *Server {
	s := &Server{
		provider: provider,
		fetcher:  &http.Client{Timeout: imageFetchTimeout},
		router:   chi.NewRouter(),
	}

	s.setupMiddleware(cfg)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware(cfg Config) {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{DefaultAllowedOrigin}
	}

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/search", s.handleSearch)
	s.router.Get("/download", s.handleDownload)

	// Health check
	s.router.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// pageParams are the validated, clamped request parameters shared by
// /search and /download
type pageParams struct {
	query   string
	page    int
	perPage int
}

// parsePageParams extracts query/page/per_page, clamping the numbers into
// their contract ranges. A missing or blank query returns false.
func parsePageParams(values url.Values) (pageParams, bool) {
	p := pageParams{
		query:   values.Get("query"),
		page:    clampedInt(values.Get("page"), DefaultPage, MinPage, MaxPage),
		perPage: clampedInt(values.Get("per_page"), DefaultPerPage, MinPerPage, MaxPerPage),
	}
	return p, p.query != ""
}

// clampedInt parses raw into [min, max], substituting fallback for absent or
// unparseable values
func clampedInt(raw string, fallback, min, max int) int {
	n := fallback
	if raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil {
			n = parsed
		}
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// upstreamErrorBody is the error envelope the original service exposes:
// the HTTP status stays 200 and the body says what went wrong upstream.
type upstreamErrorBody struct {
	Error   string `json:"error"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// classifyUpstreamError maps a provider failure onto the error envelope
func classifyUpstreamError(err error) upstreamErrorBody {
	var statusErr *commons.StatusError
	if errors.As(err, &statusErr) {
		return upstreamErrorBody{Error: "Commons API error", Status: statusErr.Code}
	}
	return upstreamErrorBody{Error: "Unexpected error", Message: err.Error()}
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
