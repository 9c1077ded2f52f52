package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/janmasethu/sakhi/internal/config"
	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/pkg/log"
)

// Server exposes the turn core over JSON.
type Server struct {
	cfg      *config.HTTPConfig
	turns    core.TurnHandler
	profiles ProfileFinder
	srv      *http.Server
}

func NewServer(cfg *config.HTTPConfig, turns core.TurnHandler, profiles ProfileFinder) *Server {
	s := &Server{
		cfg:      cfg,
		turns:    turns,
		profiles: profiles,
	}
	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /sakhi/chat", s.handleChat)
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }

	logger.Info().Str("addr", s.cfg.Addr).Msg("starting http server")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func elapsed(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
