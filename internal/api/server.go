// Package api serves the leaderboard REST API.
package api

import (
	"context"
	"os"
	"time"

	"github.com/benchboard/benchboard/core"
	"github.com/benchboard/benchboard/internal/contract"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UserHeader carries the email of the signed-in user. It is set by the
// authenticating proxy in front of the server.
const UserHeader = "X-User-Email"

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Server wires the HTTP routes to the composer and the system store.
type Server struct {
	cfg      *contract.Config
	configs  contract.ConfigLoader
	store    contract.SystemStore
	composer *core.Composer
	validate *validator.Validate
	metrics  *httpMetrics
	app      *fiber.App
}

// NewServer creates a server with every route registered.
func NewServer(cfg *contract.Config, configs contract.ConfigLoader, store contract.SystemStore) *Server {
	s := &Server{
		cfg:      cfg,
		configs:  configs,
		store:    store,
		composer: core.NewComposer(configs, store),
		validate: validator.New(),
		metrics:  newHTTPMetrics(),
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "benchboard",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})
	s.routes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Use(recover.New())
	s.app.Use(s.metrics.middleware)
	s.app.Use(logger.New(logger.Config{Output: os.Stderr}))

	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	api := s.app.Group("/api")
	api.Get("/info", s.getInfo)
	api.Get("/benchmarkconfigs", s.listBenchmarkConfigs)
	api.Get("/benchmark/:id", s.getBenchmark)

	api.Get("/systems", s.listSystems)
	api.Post("/systems", s.createSystem)
	api.Get("/systems/:id", s.getSystem)
	api.Get("/systems/:id/outputs", s.getSystemOutputs)
	api.Delete("/systems/:id", s.deleteSystem)
}

// Listen serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Listen(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.app.Listen(s.cfg.Addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.app.ShutdownWithContext(shutdownCtx)
	}
}
