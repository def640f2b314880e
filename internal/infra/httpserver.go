package infra

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// HTTPServer serves the API until its context ends, then drains in-flight
// requests.
type HTTPServer struct {
	server *http.Server
	grace  time.Duration
}

// NewHTTPServer sizes the server timeouts around the generation request
// timeout: POST /v1/generation blocks until the request resolves, so both the
// write timeout and the shutdown grace period must outlast it.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	outlast := requestBudget(cfg) + 5*time.Second
	writeTimeout := cfg.HTTPWriteTimeout
	if writeTimeout > 0 && writeTimeout < outlast {
		writeTimeout = outlast
	}
	grace := max(cfg.HTTPIdleTimeout, outlast)

	return &HTTPServer{
		server: &http.Server{
			Addr:              net.JoinHostPort("", cfg.Port),
			Handler:           handler,
			ReadTimeout:       cfg.HTTPReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       cfg.HTTPIdleTimeout,
		},
		grace: grace,
	}
}

// requestBudget is the longest a generation request can block. The mock path
// always sleeps its delay, which the request timeout may not bound.
func requestBudget(cfg *Config) time.Duration {
	budget := cfg.RequestTimeout
	if cfg.UseMock && (budget <= 0 || cfg.MockDelay < budget) {
		budget = cfg.MockDelay
	}
	return budget
}

func (s *HTTPServer) Addr() string { return s.server.Addr }

// Run listens until ctx is cancelled and then shuts down gracefully. It
// returns a listen error or the shutdown error, never http.ErrServerClosed.
func (s *HTTPServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

func (s *HTTPServer) serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() { errc <- s.server.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.grace)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errc
	return nil
}
