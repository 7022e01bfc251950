// Package server is the HTTP surface: uploads in, generated copy and
// processed media out. Plain HTTP, graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"viral-clip-gen/internal"
	"viral-clip-gen/internal/logging"
	"viral-clip-gen/internal/media"
	"viral-clip-gen/internal/model"
	"viral-clip-gen/internal/pipeline"
	"viral-clip-gen/internal/store"
)

// BatchRunner is the pipeline entry point the handlers call.
type BatchRunner interface {
	Run(ctx context.Context, assets []model.UploadedAsset, params model.GenerationParams, pos media.Position) (*pipeline.BatchResult, error)
}

// Pinger reports backend liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	httpServer *http.Server
	log        *logging.Logger
	cfg        internal.Config
}

func New(cfg internal.Config, log *logging.Logger, runner BatchRunner, contents store.ContentStore, db Pinger) *Server {
	h := &handlers{
		cfg:      cfg,
		log:      log,
		runner:   runner,
		contents: contents,
		db:       db,
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      newRouter(h),
			ReadTimeout:  cfg.HTTPReadTimeout,
			WriteTimeout: cfg.HTTPWriteTimeout,
		},
		log: log,
		cfg: cfg,
	}
}

func newRouter(h *handlers) http.Handler {
	router := chi.NewRouter()
	router.Post("/upload", h.upload)
	router.Get("/contents", h.listContents)
	router.Get("/preview/{id}", h.preview)
	router.Get("/download/{id}", h.download)
	router.Get("/translations/{lang}", h.translations)
	router.Get("/healthz", h.healthz)
	return router
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Run() error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("http server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.log.Infof("received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Infof("http server stopped")
	return nil
}
