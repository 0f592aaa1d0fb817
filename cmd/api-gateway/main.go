package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ethics-case-api/api/swagger"
	"github.com/noah-isme/ethics-case-api/internal/handler"
	"github.com/noah-isme/ethics-case-api/internal/repository"
	"github.com/noah-isme/ethics-case-api/internal/service"
	"github.com/noah-isme/ethics-case-api/pkg/cache"
	"github.com/noah-isme/ethics-case-api/pkg/config"
	"github.com/noah-isme/ethics-case-api/pkg/database"
	"github.com/noah-isme/ethics-case-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ethics-case-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ethics-case-api/pkg/middleware/requestid"
)

// @title Ethics Case API
// @version 1.0.0
// @description Ethics and compliance case workflow
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient redis.UniversalClient
	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if cfg.Notify.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, status notifications disabled", zap.Error(err))
			cfg.Notify.Enabled = false
		} else {
			defer client.Close()
			redisClient = client
			checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		}
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	caseRepo := repository.NewCaseRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	store := repository.NewWorkflowStore(db)

	notifier := service.NewNotificationService(
		repository.NewNotificationRepository(redisClient, cfg.Notify.Channel),
		metrics,
		logr,
		service.NotificationConfig{
			Enabled:    cfg.Notify.Enabled,
			Workers:    cfg.Notify.Workers,
			Retries:    cfg.Notify.Retries,
			RetryDelay: cfg.Notify.RetryDelay,
		},
	)
	// Workers outlive the signal context; runServer stops them after draining.
	notifier.Start(context.Background())

	workflow := service.NewWorkflowService(store, caseRepo, validate, logr,
		service.WithStatusNotifier(notifier),
		service.WithWorkflowMetrics(metrics),
		service.WithStoreTimeout(cfg.Workflow.StoreTimeout),
	)
	audit := service.NewAuditService(auditRepo, caseRepo, logr, nil, nil)

	audience := ""
	if len(cfg.JWT.Audience) > 0 {
		audience = cfg.JWT.Audience[0]
	}
	identity := service.NewIdentityService(service.IdentityConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: audience,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	registerRoutes(r, cfg, routeDeps{
		identity: identity,
		metrics:  metrics,
		workflow: handler.NewWorkflowHandler(workflow, audit),
		health:   handler.NewMetricsHandler(metrics, checks),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		notifier.Stop()
		logr.Fatal("failed to listen", zap.String("addr", srv.Addr), zap.Error(err))
	}
	logr.Info("starting api-gateway", zap.String("env", cfg.Env))
	if err := runServer(ctx, srv, ln, notifier.Stop, logr); err != nil {
		logr.Error("server stopped with error", zap.Error(err))
	}
}
