package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-sampler/internal/observability"
)

// NewRouter wires the status endpoints.
func NewRouter(handler *Handler, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/health", handler.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)
	return router
}

// StatusServer exposes /health and /metrics while a run is in progress. It
// only reads shared counters and never touches the sample.
type StatusServer struct {
	srv      *http.Server
	listener net.Listener
	logger   *zap.Logger
}

// StartStatusServer binds addr and serves in the background. Bind errors are
// returned synchronously.
func StartStatusServer(addr string, logger *zap.Logger) (*StatusServer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &StatusServer{
		srv: &http.Server{
			Handler:      NewRouter(NewHandler(logger), logger),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		listener: ln,
		logger:   logger,
	}
	go func() {
		logger.Info("status server starting", zap.String("addr", ln.Addr().String()))
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server", zap.Error(err))
		}
	}()
	return s, nil
}

// Addr returns the bound listen address.
func (s *StatusServer) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown stops the server, waiting for in-flight requests until ctx is done.
func (s *StatusServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
