package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/assetcatalog/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves /metrics for a registry and a /health endpoint.
type Server struct {
	addr   string
	logger logging.Logger
	server *http.Server
}

func NewServer(addr string, gatherer prometheus.Gatherer, logger logging.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	return &Server{
		addr:   addr,
		logger: logger.With("module", "metrics"),
		server: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
	}
}

// Handler exposes the routes for in-process tests.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Run listens until ctx is cancelled, then shuts the server down.
func (s *Server) Run(ctx context.Context) {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.logger.Error(ctx, "failed to listen", "addr", s.addr, "error", err)
		return
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "metrics server listening", "addr", lis.Addr().String())
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error(ctx, "metrics server failed", "error", err)
	}
	s.logger.Info(ctx, "metrics server stopped")
}
