// Package httpapi exposes the public HTTP surface: auth, settings, video
// upload relay, clip catalog, and training video endpoints, plus health and
// metrics.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/clipforge/clipforge/internal/logging"
	"github.com/clipforge/clipforge/internal/server/config"
	"github.com/clipforge/clipforge/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wires the services into an HTTP router and owns the listener.
type Server struct {
	addr      string
	jwtSecret []byte
	log       logging.Logger

	users    *services.UserService
	settings *services.SettingsService
	relay    *services.RelayService
	clips    *services.ClipService
	storage  *services.StorageService

	httpServer *http.Server
}

func NewServer(cfg *config.Config, log logging.Logger,
	users *services.UserService, settings *services.SettingsService,
	relay *services.RelayService, clips *services.ClipService,
	storage *services.StorageService) *Server {
	return &Server{
		addr:      cfg.EndpointAddrHTTP,
		jwtSecret: []byte(cfg.SecretKey),
		log:       log,
		users:     users,
		settings:  settings,
		relay:     relay,
		clips:     clips,
		storage:   storage,
	}
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/settings", s.handleGetSettings)
			r.Put("/settings", s.handlePutSettings)

			r.Post("/videos/upload", s.handleUpload)

			r.Get("/clips", s.handleListClips)
			r.Get("/clips/{id}", s.handleGetClip)
			r.Post("/clips/{id}/analyze", s.handleAnalyzeClip)
			r.Get("/clips/{id}/download", s.handleDownloadClip)

			r.Post("/training-videos/presign", s.handlePresignTraining)
			r.Get("/training-videos", s.handleListTraining)
			r.Delete("/training-videos/{id}", s.handleDeleteTraining)
		})
	})

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http server listening", "addr", s.addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
