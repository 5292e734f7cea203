package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/relinkd/relink/internal/app/resolver"
	"github.com/relinkd/relink/internal/app/service"
	inthttp "github.com/relinkd/relink/internal/http/handler"
	"github.com/relinkd/relink/internal/http/middleware"
	httpUtil "github.com/relinkd/relink/internal/http/util"
	"go.uber.org/zap"
)

// Dependencies bundles everything the HTTP server needs.
type Dependencies struct {
	Logger             *zap.Logger
	Postgres           *pgxpool.Pool
	Redis              *redis.Client
	Engine             *resolver.Engine
	Unlock             *httpUtil.UnlockSigner
	Visits             *service.VisitPublisher
	UnlockRateLimit    int
	UnlockRateWindow   time.Duration
	PermanentRedirects bool
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerRoutes()
	return s
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.Logger(s.deps.Logger))

	redirectHandler := inthttp.NewRedirectHandler(inthttp.RedirectDeps{
		Logger:    s.deps.Logger,
		Engine:    s.deps.Engine,
		Unlock:    s.deps.Unlock,
		Visits:    s.deps.Visits,
		Permanent: s.deps.PermanentRedirects,
	})

	var unlockLimiter fiber.Handler
	if s.deps.Redis != nil {
		unlockLimiter = middleware.RateLimit(
			s.deps.Redis,
			middleware.UnlockRateLimitConfig(s.deps.UnlockRateLimit, s.deps.UnlockRateWindow),
			s.deps.Logger,
		)
	}

	redirectHandler.RegisterUnlock(s.app, unlockLimiter)
	redirectHandler.Register(s.app)
}
