package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"market-data-adapter/internal/interfaces"
	"market-data-adapter/internal/logger"
)

const requestTimeout = 60 * time.Second

// Config holds server configuration
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string

	Adapter interfaces.DataAdapter
	// Cache backs the read-back routes. May be nil.
	Cache interfaces.Cache
}

// Server exposes the adapter operations over HTTP.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	adapter interfaces.DataAdapter
	cache   interfaces.Cache
}

func New(cfg Config) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		adapter: cfg.Adapter,
		cache:   cfg.Cache,
	}

	s.setupMiddleware(cfg.CORSOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(requestTimeout))

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Get("/prices/{ticker}", s.handlePrices)
	s.router.Get("/financial-metrics/{ticker}", s.handleFinancialMetrics)
	s.router.Get("/news/{ticker}", s.handleCompanyNews)
	s.router.Post("/line-items/search", s.handleLineItems)
	s.router.Get("/insider-trades/{ticker}", s.handleInsiderTrades)
	s.router.Get("/market-cap/{ticker}", s.handleMarketCap)

	s.router.Route("/cache", func(r chi.Router) {
		r.Get("/prices/{ticker}", s.handleCachedPrices)
		r.Get("/financial-metrics/{ticker}", s.handleCachedMetrics)
	})
}

// Handler returns the routed handler, used by tests and embedding callers.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	logger.Info(context.Background(), "Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info(ctx, "Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
