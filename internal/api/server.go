package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cosmico/webinar/internal/app"
	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHandler serves the echo routes and the Prometheus endpoint side by side.
func NewHandler(app *app.Context) http.Handler {
	e := echo.New()
	RegisterRoutes(e, app)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/", e)
	return mux
}

// Server runs the status API in the background of a download.
type Server struct {
	app    *app.Context
	server *http.Server
	errc   chan error
}

func NewServer(addr string, app *app.Context) *Server {
	return &Server{
		app: app,
		server: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(app),
			ReadHeaderTimeout: 10 * time.Second,
		},
		errc: make(chan error, 1),
	}
}

// Start binds the listener and serves until Stop. Bind errors are returned
// right away.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.app.Logger.Info("Status API listening on http://%s", ln.Addr())

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errc <- err
		}
		close(s.errc)
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return <-s.errc
}
