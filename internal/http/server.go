// Package http exposes the finance assistant as a JSON endpoint so bridges
// that cannot speak AMQP can still deliver chat messages.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"dompet/internal/log"
	"dompet/internal/middleware/ratelimit"
	"dompet/internal/middleware/security"
	"dompet/internal/middleware/trace"
	"dompet/internal/services"
)

const (
	defaultMaxBodyBytes = 16 << 10
	shutdownTimeout     = 10 * time.Second
	readyTimeout        = 5 * time.Second
)

// Handler answers one chat message.
type Handler interface {
	Handle(ctx context.Context, msg services.Message) (string, bool)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Options struct {
	Addr              string
	AcceptMessages    bool // expose POST /messages; health routes are always served
	RequestsPerMinute int
	TrustedProxies    []string
	MaxBodyBytes      int64
}

type Server struct {
	http.Server
	handler  Handler
	limiter  *ratelimit.Limiter
	clientIP func(*http.Request) string
	logger   *log.Logger
	started  time.Time
	maxBody  int64

	mu     sync.RWMutex
	checks map[string]ReadinessCheck
}

// NewServer wires routes and middleware. The server does not listen until Run.
func NewServer(opts Options, handler Handler, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	proxies := opts.TrustedProxies
	if len(proxies) == 0 {
		proxies = security.DefaultTrustedProxies
	}
	extractor, err := security.NewIPExtractor(proxies)
	if err != nil {
		return nil, err
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	s := &Server{
		handler:  handler,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		clientIP: extractor.ClientIP,
		logger:   logger,
		started:  time.Now(),
		maxBody:  opts.MaxBodyBytes,
		checks:   make(map[string]ReadinessCheck),
	}

	mux := http.NewServeMux()
	if opts.AcceptMessages {
		mux.HandleFunc("POST /messages", s.handleMessage)
	}
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(logger, extractor.ClientIP)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           tracer.Middleware(headers.Middleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s, nil
}

// AddReadinessCheck registers a dependency probed by /readyz.
func (s *Server) AddReadinessCheck(name string, check ReadinessCheck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.limiter.Run(ctx) })
	g.Go(func() error {
		s.logger.InfoContext(ctx, "HTTP channel listening", "addr", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
