package http

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/elthrasher/eventreg/internal/cache"
	"github.com/elthrasher/eventreg/internal/config"
	"github.com/elthrasher/eventreg/internal/core"
	"github.com/elthrasher/eventreg/internal/core/engine"
	"github.com/elthrasher/eventreg/internal/http/handlers"
	"github.com/elthrasher/eventreg/internal/http/middlewares"
	"github.com/elthrasher/eventreg/internal/observability"
	"github.com/elthrasher/eventreg/internal/store/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Deps bundles the process-wide dependencies the router wires into
// handlers: the shared connection pool, cache client and observability
// hooks. Kept separate from config.Config because these are live
// connections, not settings.
type Deps struct {
	Pool  *pgxpool.Pool
	Redis *redis.Client
	Log   *slog.Logger
	Prom  *observability.Prom
}

func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	if os.Getenv("APP_ENV") != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.CORSMiddleware(nil)) // nil => permissive by default (spec §6)
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	readyCheck := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		if deps.Pool != nil {
			if err := deps.Pool.Ping(ctx); err != nil {
				return err
			}
		}
		if deps.Redis != nil {
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				return err
			}
		}
		return nil
	}

	healthHandler := handlers.NewHealthHandler(readyCheck)

	store := postgres.New(deps.Pool,
		postgres.WithProm(deps.Prom),
		postgres.WithTables(postgres.Tables{
			Users:         cfg.UsersTableName,
			Events:        cfg.EventsTableName,
			Registrations: cfg.RegistrationsTableName,
		}),
	)

	var eventCache *cache.Cache
	if deps.Redis != nil {
		eventCache = cache.New(deps.Redis, 30*time.Second)
	}

	userSvc := core.NewUserService(store)
	eventSvc := core.NewEventService(store, eventCache)
	reg := engine.New(store,
		engine.WithLogger(deps.Log),
		engine.WithProm(deps.Prom),
		engine.WithMetrics(observability.NewEngineMetrics()),
		engine.WithMaxRetries(cfg.EngineMaxRetries),
	)

	usersHandler := handlers.NewUsersHandler(userSvc)
	eventsHandler := handlers.NewEventsHandler(eventSvc)
	registrationsHandler := handlers.NewRegistrationsHandler(reg)

	registerLimiter := middlewares.NewRateLimiter(20, time.Minute)

	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)
	if deps.Prom != nil {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.POST("/users", usersHandler.CreateUser)
	r.GET("/users/:userId", usersHandler.GetUser)

	r.POST("/events", eventsHandler.CreateEvent)
	r.GET("/events", eventsHandler.ListEvents)
	r.GET("/events/:eventId", eventsHandler.GetEvent)
	r.PUT("/events/:eventId", eventsHandler.UpdateEvent)
	r.DELETE("/events/:eventId", eventsHandler.DeleteEvent)

	r.POST("/users/:userId/registrations",
		registerLimiter.RateLimiterMiddleware(middlewares.KeyByPathParam("userId")),
		registrationsHandler.RegisterForUser)
	r.DELETE("/users/:userId/registrations/:eventId", registrationsHandler.UnregisterUserFromEvent)
	r.GET("/users/:userId/registrations", registrationsHandler.ListForUser)

	r.POST("/events/:eventId/registrations",
		registerLimiter.RateLimiterMiddleware(middlewares.KeyByPathParam("eventId")),
		registrationsHandler.RegisterForEvent)
	r.DELETE("/events/:eventId/registrations/:userId", registrationsHandler.UnregisterEventFromUser)
	r.GET("/events/:eventId/registrations", registrationsHandler.ListForEvent)

	return r
}
