package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go-coordinator/core/cache"
	"go-coordinator/core/clock"
	"go-coordinator/core/config"
	"go-coordinator/core/constants"
	"go-coordinator/core/database"
	"go-coordinator/core/logger"
	"go-coordinator/core/middleware"
	"go-coordinator/core/token"
	"go-coordinator/modules/article"
	articleRepository "go-coordinator/modules/article/repository"
	"go-coordinator/modules/auth"
	authRepository "go-coordinator/modules/auth/repository"
	"go-coordinator/modules/checkin"
	checkinController "go-coordinator/modules/checkin/controller"
	checkinRepository "go-coordinator/modules/checkin/repository"
	"go-coordinator/modules/event"
	"go-coordinator/modules/event/client"
	eventRepository "go-coordinator/modules/event/repository"
	"go-coordinator/modules/participant"
	participantRepository "go-coordinator/modules/participant/repository"
	participantService "go-coordinator/modules/participant/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App is a configured server with every requested module mounted.
type App struct {
	Echo    *echo.Echo
	cfg     *config.Config
	db      *database.Database
	cache   cache.Cache
	checkin *checkin.Module
	// checks are probed by /health, keyed by dependency name.
	checks map[string]func(context.Context) error
}

// Run loads configuration, serves until SIGINT or SIGTERM and shuts down
// gracefully.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
		logger.Info("Server:Run:Listening", "addr", addr, "modules", cfg.App.Modules)
		if err := app.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Server:Run:ShuttingDown")
	case err := <-errCh:
		if err != nil {
			_ = app.Shutdown(context.Background())
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

// New wires storage, tokens and modules according to cfg. Without a database
// the modules share in-memory stores; without Redis login throttling and
// check-in fan-out stay within this process.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{cfg: cfg, checks: make(map[string]func(context.Context) error)}
	ok := false
	defer func() {
		if !ok {
			_ = app.Shutdown(context.Background())
		}
	}()

	keys, issuer, authenticator, err := buildTokens(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Enabled {
		if app.db, err = database.InitDB(ctx, cfg.Database); err != nil {
			return nil, err
		}
		if cfg.Database.Migrate {
			if err := database.RunMigrations(cfg.Database.URL()); err != nil {
				return nil, err
			}
		}
	}

	policy := cache.LoginPolicy{MaxAttempts: cfg.Auth.MaxLoginAttempts, BlockFor: cfg.Auth.LoginBlockDuration}
	var relay cache.Cache
	if cfg.Redis.Enabled() {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis, policy)
		if err != nil {
			return nil, err
		}
		app.cache, relay = redisCache, redisCache
	} else {
		app.cache = cache.NewMemoryCache(policy, clock.Real())
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: corsOrigins(cfg.CORS.AllowedOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, constants.HeaderAuthToken},
	}))
	e.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			logger.Debug("Server:Request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "requestId", v.RequestID)
			return nil
		},
	}))
	app.Echo = e

	app.checks["cache"] = app.cache.Ping
	if app.db != nil {
		app.checks["database"] = app.db.PingContext
	}
	e.GET("/health", app.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	mw := middleware.NewMiddleware(authenticator)

	// Memory mode: events and check-ins share one registry.
	var memoryRegistry *checkinRepository.MemoryRegistry
	if app.db == nil {
		memoryRegistry = checkinRepository.NewMemoryRegistry()
	}

	var participants participantService.ParticipantServiceInterface
	if cfg.HasModule(constants.ModuleParticipant) {
		var repo participantRepository.ParticipantRepositoryInterface = participantRepository.NewMemoryParticipantRepository()
		if app.db != nil {
			repo = participantRepository.NewParticipantRepository(app.db)
		}
		participants = participant.Init(e, mw, repo, clock.Real())
	}

	if cfg.HasModule(constants.ModuleAuth) {
		var repo authRepository.AdministratorRepositoryInterface = authRepository.NewMemoryAdministratorRepository()
		if app.db != nil {
			repo = authRepository.NewAdministratorRepository(app.db)
		}
		if _, err := auth.Init(ctx, e, mw, auth.Deps{
			Repository: repo,
			Cache:      app.cache,
			Issuer:     issuer,
			Auth:       authenticator,
			Clock:      clock.Real(),
			Lifespan:   cfg.JWT.Lifespan,
			Admins:     cfg.Auth.Admins,
		}); err != nil {
			return nil, err
		}
	}

	if cfg.HasModule(constants.ModuleEvent) {
		var repo eventRepository.EventRepositoryInterface
		if app.db != nil {
			repo = eventRepository.NewEventRepository(app.db)
		} else {
			repo = eventRepository.NewMemoryEventRepository(memoryRegistry)
		}
		var verifier client.ParticipantVerifier
		if cfg.Participant.VerificationURL != "" {
			verifier = client.NewParticipantClient(cfg.Participant.VerificationURL, constants.VerificationTimeout)
		} else {
			verifier = participants
		}
		event.Init(e, mw, event.Deps{Repository: repo, Verifier: verifier, Clock: clock.Real()})
	}

	if cfg.HasModule(constants.ModuleCheckin) {
		var registry checkinRepository.CheckinRegistry = memoryRegistry
		if app.db != nil {
			registry = checkinRepository.NewPostgresRegistry(app.db)
		}
		if app.checkin, err = checkin.Init(e, mw, checkin.Deps{
			Auth:             authenticator,
			Registry:         registry,
			Relay:            relay,
			SubscriberBuffer: cfg.Checkin.SubscriberBuffer,
			Options: checkinController.Options{
				PingInterval:   cfg.Checkin.PingInterval,
				WriteTimeout:   constants.DefaultWriteTimeout,
				AllowedOrigins: cfg.CORS.AllowedOrigins,
			},
		}); err != nil {
			return nil, err
		}
	}

	if cfg.HasModule(constants.ModuleArticle) {
		var repo articleRepository.ArticleRepositoryInterface = articleRepository.NewMemoryArticleRepository()
		if app.db != nil {
			repo = articleRepository.NewArticleRepository(app.db)
		}
		article.Init(e, mw, repo, clock.Real())
	}

	logger.Info("Server:New:Ready",
		"modules", cfg.App.Modules,
		"database", app.db != nil,
		"redis", cfg.Redis.Enabled(),
		"signing", keys.CanSign(),
	)
	ok = true
	return app, nil
}

func buildTokens(cfg *config.Config) (*token.KeySet, *token.Issuer, *token.Authenticator, error) {
	publicPEM, err := token.ReadPEM(cfg.JWT.PublicKey, cfg.JWT.PublicKeyFile)
	if err != nil {
		return nil, nil, nil, err
	}
	var privatePEM string
	if cfg.HasModule(constants.ModuleAuth) {
		if privatePEM, err = token.ReadPEM(cfg.JWT.PrivateKey, cfg.JWT.PrivateKeyFile); err != nil {
			return nil, nil, nil, err
		}
	}

	keys, err := token.LoadKeySet(publicPEM, privatePEM)
	if err != nil {
		return nil, nil, nil, err
	}

	var issuer *token.Issuer
	if keys.CanSign() {
		if issuer, err = token.NewIssuer(keys, cfg.JWT.Issuer); err != nil {
			return nil, nil, nil, err
		}
	}

	verifier, err := token.NewVerifier(keys)
	if err != nil {
		return nil, nil, nil, err
	}
	return keys, issuer, token.NewAuthenticator(verifier, cfg.JWT.AllowedIssuers, clock.Real()), nil
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// health pings every storage dependency and answers 503 when one is down.
func (a *App) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.HealthCheckTimeout)
	defer cancel()

	resp := healthResponse{Status: "healthy", Checks: make(map[string]string, len(a.checks))}
	status := http.StatusOK
	for name, ping := range a.checks {
		if err := ping(ctx); err != nil {
			logger.Warn("Server:Health:Down", "dependency", name, "error", err)
			resp.Checks[name] = "down"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "up"
	}
	resp.Timestamp = time.Now().UTC()
	return c.JSON(status, resp)
}

// Shutdown stops accepting requests, closes websocket sessions and releases
// storage. It is safe on a partially built App.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Echo != nil {
		if err := a.Echo.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http: %w", err))
		}
	}
	if a.checkin != nil {
		a.checkin.Shutdown()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}
