package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/slidecast/slidecast-server/internal/ingest"
	"github.com/slidecast/slidecast-server/internal/media"
	"github.com/slidecast/slidecast-server/internal/publish"
	"github.com/slidecast/slidecast-server/internal/session"
	"github.com/slidecast/slidecast-server/internal/stream"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Port      int
	Sessions  *session.Store
	Artifacts *media.Artifacts
	Encoder   media.Encoder // nil when ffmpeg is unavailable
	Decoder   media.Decoder // nil when ffmpeg is unavailable
	Resolver  *ingest.Resolver
	Publisher *publish.Publisher
	Streamer  *stream.Server
	Logger    *slog.Logger
	StartTime time.Time
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:        fmt.Sprintf(":%d", cfg.Port),
			Handler:     router,
			ReadTimeout: 0, // large multipart uploads stream at client pace
			IdleTimeout: 60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
