// Package server exposes the alert and portfolio services over a REST API
// with a websocket event stream.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stockverse/internal/app"
	"github.com/bobmcallan/stockverse/internal/common"
)

// Server wraps the HTTP server and application reference
type Server struct {
	app    *app.App
	router *chi.Mux
	server *http.Server
	logger *common.Logger
}

// NewServer creates a new HTTP REST API server
func NewServer(a *app.App) *Server {
	s := &Server{
		app:    a,
		router: chi.NewRouter(),
		logger: a.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         a.Config.Server.Address(),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	origins := s.app.Config.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	r := s.router

	// The websocket route sits outside the timeout group; connections are long-lived.
	r.Get("/ws", s.app.Hub.ServeWS)

	if s.app.MCPServer != nil {
		r.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.app.MCPServer,
			mcpserver.WithStateLess(true),
		))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/api", func(r chi.Router) {
			r.Get("/health", s.handleHealth)
			r.Get("/version", s.handleVersion)

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", s.handleAlertList)
				r.Post("/", s.handleAlertCreate)
				r.Post("/evaluate", s.handleAlertEvaluate)
				r.Get("/counts", s.handleAlertCounts)
				r.Get("/notifications", s.handleNotificationList)
				r.Delete("/notifications/{id}", s.handleNotificationDismiss)
				r.Delete("/{id}", s.handleAlertRemove)
			})

			r.Route("/portfolio", func(r chi.Router) {
				r.Get("/holdings", s.handleHoldingList)
				r.Post("/holdings", s.handleHoldingAdd)
				r.Delete("/holdings/{id}", s.handleHoldingRemove)
				r.Post("/refresh", s.handlePortfolioRefresh)
				r.Get("/summary", s.handlePortfolioSummary)
				r.Get("/export", s.handlePortfolioExport)
			})

			r.Get("/quotes/{symbol}", s.handleQuote)

			r.Route("/analytics/{symbol}", func(r chi.Router) {
				r.Get("/indicators", s.handleIndicators)
				r.Get("/prediction", s.handlePrediction)
				r.Get("/sentiment", s.handleSentiment)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Msg("Starting REST API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down REST API server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		event := s.logger.Debug()
		if ww.Status() >= 500 {
			event = s.logger.Error()
		} else if ww.Status() >= 400 {
			event = s.logger.Info()
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
