// Package server provides the HTTP API for skillmatch.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/skillmatch/internal/config"
	"github.com/hyperjump/skillmatch/internal/matching"
)

// InboxService manages the directories watched for submission files.
// Implemented by *watcher.Watcher.
type InboxService interface {
	Directories() []string
	AddDirectory(path string, syncExisting bool) error
	RemoveDirectory(path string) error
}

// Server is the HTTP server for the skillmatch API.
type Server struct {
	engine     *matching.Engine
	config     *config.ServerConfig
	logger     *zap.Logger
	server     *http.Server
	inbox      InboxService   // optional; nil disables inbox endpoints
	configPath string         // when set with appConfig, inbox changes are saved here
	appConfig  *config.Config // optional
	configMu   sync.Mutex
}

// NewServer creates a server with the given dependencies.
// inbox, configPath and appConfig may be nil/empty.
func NewServer(
	engine *matching.Engine,
	cfg *config.ServerConfig,
	logger *zap.Logger,
	inbox InboxService,
	configPath string,
	appConfig *config.Config,
) *Server {
	s := &Server{
		engine:     engine,
		config:     cfg,
		logger:     logger,
		inbox:      inbox,
		configPath: configPath,
		appConfig:  appConfig,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/skills", s.handleAddSkills)
		r.Delete("/skills", s.handleClearIndex)
		r.Post("/skills/search", s.handleSearch)
		r.Post("/gap-analysis", s.handleGapAnalysis)
		r.Get("/status", s.handleStatus)

		r.Get("/inbox/directories", s.handleInboxDirectoriesList)
		r.Post("/inbox/directories", s.handleInboxDirectoriesAdd)
		r.Delete("/inbox/directories", s.handleInboxDirectoriesRemove)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
// After Stop it returns http.ErrServerClosed.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server. It may be called before or while
// Start runs.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
