package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/erp/settlement/docs"
	appsettlement "github.com/erp/settlement/internal/application/settlement"
	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/infrastructure/auth"
	"github.com/erp/settlement/internal/infrastructure/cache"
	"github.com/erp/settlement/internal/infrastructure/config"
	"github.com/erp/settlement/internal/infrastructure/event"
	"github.com/erp/settlement/internal/infrastructure/handoff"
	"github.com/erp/settlement/internal/infrastructure/logger"
	"github.com/erp/settlement/internal/infrastructure/migration"
	"github.com/erp/settlement/internal/infrastructure/persistence"
	"github.com/erp/settlement/internal/infrastructure/storage"
	"github.com/erp/settlement/internal/infrastructure/telemetry"
	"github.com/erp/settlement/internal/interfaces/http/handler"
	"github.com/erp/settlement/internal/interfaces/http/middleware"
	"github.com/erp/settlement/internal/interfaces/http/router"
	"github.com/erp/settlement/migrations"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const version = "1.0.0"

// pingFunc adapts a health check to handler.Pinger
type pingFunc func() error

func (f pingFunc) Ping() error { return f() }

//	@title			ERP Settlement API
//	@version		1.0
//	@description	Payment settlement sessions: fetch a customer's due documents, allocate amounts to pay and hand the settlement to payment capture.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = telemetry.BridgeLogger(log, telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, lp, logger.ParseLevel(cfg.Log.Level)))

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		ProfileMemory:   true,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		if err := tp.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	log.Info("Starting settlement service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	settlementMetrics, err := telemetry.NewSettlementMetrics(mp)
	if err != nil {
		log.Fatal("Failed to create settlement metrics", zap.Error(err))
	}

	// Due ledger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithGormLogger(gormLog),
		persistence.WithTracing(telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBName:          cfg.Database.DBName,
		}, log),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.AutoMigrate {
		if err := migrate(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}
	ledger := persistence.NewGormDueLedgerRepository(db.DB)

	// Acknowledgement store
	acks, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).
		Create(ctx, cfg.Settlement.IdempotencyBackend)
	if err != nil {
		log.Fatal("Failed to create acknowledgement store", zap.Error(err))
	}
	defer func() {
		_ = acks.Close()
	}()

	components := map[string]handler.Pinger{"database": db}

	var redisClient *redis.Client
	if cfg.JWT.RevocationCheck || cfg.Settlement.EventStream != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		components["redis"] = pingFunc(func() error {
			return redisClient.Ping(context.Background()).Err()
		})
	}

	// Events
	serializer := event.NewEventSerializer()
	event.RegisterSettlementEvents(serializer)
	bus := event.NewInMemoryEventBus(log)

	archive, err := newArchive(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize settlement archive", zap.Error(err))
	}
	archiver := event.NewIdempotentHandler(storage.NewArchiveHandler(archive), acks, log,
		event.WithKeyFunc(storage.SnapshotKey),
		event.WithKeyPrefix("archive:"),
		event.WithTTL(cfg.Settlement.AckTTL),
	)
	archiveQueue := event.NewAsyncHandler(archiver, log)
	if err := archiveQueue.Start(ctx); err != nil {
		log.Fatal("Failed to start archive queue", zap.Error(err))
	}
	bus.Subscribe(archiveQueue, archiveQueue.EventTypes()...)

	if cfg.Settlement.EventStream != "" {
		forwarder := event.NewRedisStreamForwarder(redisClient, cfg.Settlement.EventStream,
			cfg.Settlement.EventStreamMaxLen, serializer, log, event.SettlementEventTypes()...)
		bus.Subscribe(forwarder, forwarder.EventTypes()...)
		log.Info("Forwarding settlement events", zap.String("stream", cfg.Settlement.EventStream))
	}
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Settlement engine
	rule, err := settlement.ParseReceivableSignRule(cfg.Settlement.ReceivableSignRule)
	if err != nil {
		log.Fatal("Invalid receivable sign rule", zap.Error(err))
	}
	gateway := handoff.NewGateway(bus, log)
	svc := appsettlement.NewService(ledger, gateway, gateway,
		appsettlement.WithNotifier(handoff.MultiNotifier{
			handoff.NewLogNotifier(log),
			handoff.NewEventNotifier(bus, log),
		}),
		appsettlement.WithEventPublisher(bus),
		appsettlement.WithIdempotencyStore(acks),
		appsettlement.WithMetrics(settlementMetrics),
		appsettlement.WithLogger(log),
		appsettlement.WithFetchTimeout(cfg.Settlement.FetchTimeout),
		appsettlement.WithAckTTL(cfg.Settlement.AckTTL),
		appsettlement.WithIdleTTL(cfg.Settlement.SessionIdleTTL),
		appsettlement.WithReceivableSignRule(rule),
	)
	go svc.RunSweeper(ctx, cfg.Settlement.SweepInterval)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName
	tracingCfg.Enabled = cfg.Telemetry.Enabled

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.TracingWithConfig(tracingCfg),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(mp),
		middleware.Secure(),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	jwtService := auth.NewJWTService(cfg.JWT)
	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.Logger = log
	if cfg.JWT.RevocationCheck {
		jwtCfg.Revocations = auth.NewRedisRevocationList(redisClient, auth.DefaultRevocationPrefix)
	}

	systemHandler := handler.NewSystemHandler(version, svc.SessionCount, components)
	router.RegisterHealthChecks(engine, systemHandler)
	router.RegisterSwagger(engine, middleware.SwaggerProtection(middleware.SwaggerConfig{
		Enabled:     cfg.Swagger.Enabled,
		RequireAuth: cfg.Swagger.RequireAuth,
		AllowedIPs:  cfg.Swagger.AllowedIPs,
	}, middleware.JWTAuthMiddlewareWithConfig(jwtCfg)))

	router.NewRouter(engine, router.WithAPIMiddleware(
		middleware.JWTAuthMiddlewareWithConfig(jwtCfg),
		middleware.TracingAttributeInjector(),
		middleware.Profiling(profiler.IsEnabled()),
	)).
		Register(router.NewSettlementRoutes(handler.NewSettlementHandler(svc))).
		Register(router.NewSystemRoutes(systemHandler)).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Error stopping event bus", zap.Error(err))
	}
	if err := archiveQueue.Stop(shutdownCtx); err != nil {
		log.Warn("Error draining archive queue", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	_ = mp.Shutdown(shutdownCtx)
	_ = tp.Shutdown(shutdownCtx)
	_ = lp.Shutdown(shutdownCtx)

	log.Info("Server exited gracefully")
}

// migrate applies the embedded schema
func migrate(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migration.FromFS(migrations.FS, "."), log)
	if err != nil {
		return err
	}
	return m.Up()
}

// newArchive returns the S3 archive when storage is enabled
func newArchive(ctx context.Context, cfg *config.Config, log *zap.Logger) (settlement.SettlementArchive, error) {
	if !cfg.Storage.Enabled {
		return storage.NewNopArchive(log), nil
	}
	archive, err := storage.NewS3SettlementArchive(ctx, cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return archive, nil
}
