package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bais/internal/config"
	"bais/internal/errors"
)

// maxBodyBytes bounds request bodies; samples are small
const maxBodyBytes = 8 << 20

// Server exposes the statistics core as a JSON HTTP API
type Server struct {
	router   *chi.Mux
	analysis config.AnalysisConfig
	port     string
}

// NewServer creates a server with its routes registered
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		analysis: cfg.Analysis,
		port:     cfg.Server.Port,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/describe", s.handleDescribe)
		r.Post("/five-number", s.handleFiveNumber)
		r.Post("/welch", s.handleWelch)
		r.Post("/effect-size", s.handleEffectSize)
		r.Post("/bootstrap", s.handleBootstrap)
		r.Post("/regression", s.handleRegression)
		r.Post("/proportion/ztest", s.handleProportionZTest)
		r.Post("/proportion/ci", s.handleProportionCI)
		r.Post("/chisquare", s.handleChiSquare)
		r.Post("/adjust", s.handleAdjust)
	})
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[API] listening on :%s", s.port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
		log.Printf("[API] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[API] internal error: %v", err)
	}
	writeJSON(w, status, errorResponse{Code: errors.GetCode(err), Error: err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, errors.InvalidInput("malformed JSON body: "+err.Error()))
		return false
	}
	return true
}
