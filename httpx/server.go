package httpx

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Validator runs before route handlers; return an error to stop the pipeline.
type Validator func(Context) error

type RouteRegistrar func(*Echo)

// Server is an echo server with JSON errors. It hosts the in-process
// identity service in tests and applications that guard routes with
// AuthMiddleware.
type Server struct {
	echo     *Echo
	address  string
	log      zerolog.Logger
	shutdown time.Duration

	mu    sync.Mutex
	bound string
}

type StartOption func(*Server)

func WithShutdownTimeout(d time.Duration) StartOption {
	return func(s *Server) {
		if d > 0 {
			s.shutdown = d
		}
	}
}

func NewServer(opts ...ServerOption) *Server {
	cfg := serverConfig{address: defaultAddress, log: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	e := NewEcho()
	e.HTTPErrorHandler = renderError
	e.Server.ReadTimeout = defaultServerTimeout
	e.Server.WriteTimeout = defaultServerTimeout
	e.Use(RecoverMiddleware())
	e.Use(cfg.middlewares...)
	if cfg.cors != nil {
		e.Use(CORSMiddleware(cfg.cors))
	}
	if len(cfg.validators) > 0 {
		e.Use(runValidators(cfg.validators))
	}

	return &Server{echo: e, address: cfg.address, log: cfg.log, shutdown: 5 * time.Second}
}

func (s *Server) RegisterRoutes(reg RouteRegistrar) {
	if reg != nil {
		reg(s.echo)
	}
}

// RegisterRouteTable registers a declarative route list.
func (s *Server) RegisterRouteTable(routes ...Route) {
	RegisterRoutes(s.echo, routes...)
}

func (s *Server) Handler() http.Handler { return s.echo.Echo }

// Addr reports the address Start is listening on, which differs from the
// configured one when that used port 0. It is empty until Start binds.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

// Start listens on the configured address and serves until ctx is done,
// then shuts down gracefully and returns ctx.Err(). Bind failures are
// returned immediately.
func (s *Server) Start(ctx context.Context, opts ...StartOption) error {
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.bound = ln.Addr().String()
	s.mu.Unlock()
	s.log.Info().Str("addr", s.bound).Msg("http server listening")

	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.echo.Echo,
		ReadTimeout:  s.echo.Server.ReadTimeout,
		WriteTimeout: s.echo.Server.WriteTimeout,
	}

	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	if err := srv.Shutdown(stopCtx); err != nil {
		s.log.Warn().Err(err).Msg("http server shutdown")
	}
	return ctx.Err()
}

func runValidators(validators []Validator) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			for _, v := range validators {
				if v == nil {
					continue
				}
				if err := v(c); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}
