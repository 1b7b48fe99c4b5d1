package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Router assembles the HTTP surface: public account routes, the
// token-protected catalog and user routes, health and optional metrics.
type Router struct {
	userHandler    *UserHandler
	movieHandler   *MovieHandler
	authMiddleware func(http.Handler) http.Handler
	extraware      []func(http.Handler) http.Handler
	metricsHandler http.Handler
	metricsPath    string
	logger         zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	UserHandler    *UserHandler
	MovieHandler   *MovieHandler
	AuthMiddleware func(http.Handler) http.Handler
	// Middleware is applied to every route, metrics included.
	Middleware []func(http.Handler) http.Handler
	// MetricsHandler, when set, is mounted at MetricsPath.
	MetricsHandler http.Handler
	MetricsPath    string
	Logger         zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(config RouterConfig) *Router {
	return &Router{
		userHandler:    config.UserHandler,
		movieHandler:   config.MovieHandler,
		authMiddleware: config.AuthMiddleware,
		extraware:      config.Middleware,
		metricsHandler: config.MetricsHandler,
		metricsPath:    config.MetricsPath,
		logger:         config.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger(rt.logger))
	for _, mw := range rt.extraware {
		r.Use(mw)
	}

	r.Get("/health", rt.handleHealth)
	if rt.metricsHandler != nil {
		r.Handle(rt.metricsPath, rt.metricsHandler)
	}

	// Signup, login and logout work without a token.
	rt.userHandler.RegisterPublicRoutes(r)

	r.Group(func(protected chi.Router) {
		protected.Use(rt.authMiddleware)
		rt.userHandler.RegisterProtectedRoutes(protected)
		rt.movieHandler.RegisterRoutes(protected)
	})

	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
