// Package app assembles the server from configuration: storage backend,
// services, background workers and the HTTP stack.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/table-reservation/internal/availability"
	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/database"
	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/repository/memory"
	"github.com/iliyamo/table-reservation/internal/router"
	"github.com/iliyamo/table-reservation/internal/service"
)

// Options tweak New.
type Options struct {
	// Migrate applies pending migrations before serving (mysql only).
	Migrate bool
	// Redis overrides the client built from the environment.  Leave nil
	// to dial REDIS_ADDR.
	Redis *redis.Client
	// NoRedis disables rate limiting and caching outright.
	NoRedis bool
}

// App is a fully wired server.
type App struct {
	Cfg          config.Config
	Echo         *echo.Echo
	Reservations *service.ReservationService
	Restaurants  *service.RestaurantService
	Sweeper      *service.Sweeper
	Logger       *slog.Logger

	db        *sql.DB
	rdb       *redis.Client
	publisher *queue.Publisher
}

// stores is one storage backend's implementation of every port.
type stores struct {
	profiles interface {
		service.ProfileStore
		handler.Accounts
	}
	restaurants  service.RestaurantStore
	reservations service.ReservationStore
	tables       interface {
		availability.Store
		service.TableStore
	}
	events service.EventSink
	tokens handler.Tokens
}

func mysqlStores(db *sql.DB) stores {
	return stores{
		profiles:     repository.NewProfileRepo(db),
		restaurants:  repository.NewRestaurantRepo(db),
		reservations: repository.NewReservationRepo(db),
		tables:       repository.NewTableRepo(db),
		events:       repository.NewEventRepo(db),
		tokens:       repository.NewTokenRepo(db),
	}
}

func memoryStores() stores {
	return stores{
		profiles:     memory.NewProfileStore(),
		restaurants:  memory.NewRestaurantStore(),
		reservations: memory.NewReservationStore(),
		tables:       memory.NewSlotStore(),
		events:       memory.NewEventLog(),
		tokens:       memory.NewTokenStore(),
	}
}

// New builds the App.  Call Close when done.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opt Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Cfg: cfg, Logger: logger}

	var st stores
	switch cfg.Storage {
	case config.StorageMemory:
		st = memoryStores()
	default:
		db, err := database.Open(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		a.db = db
		if opt.Migrate {
			applied, err := database.Migrate(ctx, db)
			if err != nil {
				_ = db.Close()
				return nil, err
			}
			for _, name := range applied {
				logger.Info("migration applied", "name", name)
			}
		}
		st = mysqlStores(db)
	}

	var sinks []service.EventSink
	if cfg.RabbitURL != "" {
		a.publisher = queue.NewPublisher(cfg.RabbitURL, logger)
		sinks = append(sinks, a.publisher)
	}
	events := service.NewEventRecorder(st.events, logger, sinks...)

	resCfg := config.LoadReservationConfig()
	a.Restaurants = service.NewRestaurantService(st.restaurants, st.tables)
	a.Reservations = service.NewReservationService(service.Deps{
		Reservations: st.reservations,
		Restaurants:  st.restaurants,
		Profiles:     st.profiles,
		Tables:       availability.New(st.tables, logger),
		Events:       events,
		SlotDuration: resCfg.SlotDuration,
		Logger:       logger,
	})
	a.Sweeper = &service.Sweeper{
		Service:  a.Reservations,
		Store:    st.reservations,
		Interval: resCfg.SweepInterval,
		Batch:    resCfg.SweepBatch,
		Logger:   logger,
	}

	switch {
	case opt.NoRedis:
	case opt.Redis != nil:
		a.rdb = opt.Redis
	default:
		a.rdb = config.NewRedisClient(ctx)
		if a.rdb == nil {
			logger.Warn("redis unavailable; rate limiting and caching disabled")
		}
	}

	a.Echo = a.newEcho(st)
	return a, nil
}

func (a *App) newEcho(st stores) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			a.Logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	cacheCfg := config.LoadCacheConfig()
	purge := func(ctx context.Context, path string) error {
		return middleware.Purge(ctx, cacheCfg, a.rdb, path)
	}

	pingers := map[string]handler.Pinger{}
	if a.db != nil {
		pingers["mysql"] = a.db
	}
	if a.rdb != nil {
		pingers["redis"] = redisPinger{a.rdb}
	}

	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(a.Cfg, st.profiles, st.tokens),
		Reservations: handler.NewReservationHandler(a.Reservations, a.Restaurants),
		Restaurants:  handler.NewRestaurantHandler(a.Restaurants, a.Reservations, purge),
		Profiles:     handler.NewProfileHandler(a.Reservations),
		Health:       handler.Health(pingers),
	}, router.Options{
		JWTSecret: a.Cfg.JWTSecret,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), a.rdb),
		Cache:     middleware.NewRedisCache(cacheCfg, a.rdb),
	})
	return e
}

type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) PingContext(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }

// Run serves HTTP and runs the sweeper, plus the event consumer when a
// broker is configured, until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	go func() {
		if err := a.Sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.Logger.Error("sweeper stopped", "err", err)
		}
	}()
	if a.Cfg.RabbitURL != "" {
		go func() {
			if err := queue.StartEventConsumer(ctx, a.Cfg.RabbitURL, a.Cfg.EventLogPath, a.Logger); err != nil && !errors.Is(err, context.Canceled) {
				a.Logger.Error("event consumer stopped", "err", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Echo.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("http shutdown", "err", err)
		}
	}()

	addr := ":" + a.Cfg.Port
	a.Logger.Info("listening", "addr", addr, "env", a.Cfg.Env, "storage", a.Cfg.Storage)
	if err := a.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Close releases the database, Redis and broker connections.
func (a *App) Close() error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
