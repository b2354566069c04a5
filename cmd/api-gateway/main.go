package main

import (
	"context"
	"errors"
	"fmt"
	"log"
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

	_ "github.com/noah-isme/leave-dashboard-api/api/swagger"
	"github.com/noah-isme/leave-dashboard-api/internal/handler"
	"github.com/noah-isme/leave-dashboard-api/internal/middleware"
	"github.com/noah-isme/leave-dashboard-api/internal/repository"
	"github.com/noah-isme/leave-dashboard-api/internal/service"
	"github.com/noah-isme/leave-dashboard-api/pkg/cache"
	"github.com/noah-isme/leave-dashboard-api/pkg/config"
	"github.com/noah-isme/leave-dashboard-api/pkg/database"
	"github.com/noah-isme/leave-dashboard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/leave-dashboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/leave-dashboard-api/pkg/middleware/requestid"
)

// @title Leave Dashboard API
// @version 1.0.0
// @description Leave calendars, monthly summaries and analytics over synced attendance data.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Leave.CacheTTL, logr, redisClient != nil)

	leaveRepo := repository.NewLeaveRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	rules := service.NewLeaveRules(service.NewWorkdayCalendar(cfg.Leave.Holidays, cfg.Leave.ExtraWorkdays), cfg.Leave.Location)

	leaveSvc := service.NewLeaveService(service.LeaveServiceParams{
		Leaves:       leaveRepo,
		Organization: orgRepo,
		Cache:        cacheSvc,
		Metrics:      metricsSvc,
		Validator:    validate,
		Logger:       logr,
		Rules:        rules,
		RootDeptID:   cfg.Leave.RootDeptID,
		VisibleTypes: cfg.Leave.VisibleTypes,
		CacheTTL:     cfg.Leave.CacheTTL,
	})

	accessSvc := service.NewAccessService(repository.NewAllowedUserRepository(db), validate, logr, cfg.Auth.AdminMobiles)
	sessionSvc := service.NewSessionService(repository.NewSessionRepository(redisClient), accessSvc, metricsSvc, validate, logr, service.SessionConfig{
		Secret:       cfg.Session.Secret,
		TTL:          cfg.Session.TTL,
		Issuer:       cfg.Session.Issuer,
		AdminMobiles: cfg.Auth.AdminMobiles,
	})

	leaveHandler := handler.NewLeaveHandler(leaveSvc, nil, cfg.Leave.Location)
	if cfg.Export.Enabled {
		exportSvc := service.NewExportService(leaveSvc, service.ExportOptions{
			MaxRows: cfg.Export.MaxRows,
			Title:   cfg.Export.PDFTitle,
		}, logr, nil, nil)
		leaveHandler = handler.NewLeaveHandler(leaveSvc, exportSvc, cfg.Leave.Location)
	}

	analyticsHandler := handler.NewAnalyticsHandler(nil, metricsSvc, cfg.Analytics.RankingLimit, cfg.Leave.Location)
	if cfg.Analytics.Enabled {
		analyticsSvc := service.NewAnalyticsService(service.AnalyticsServiceParams{
			Leaves:       leaveRepo,
			Organization: orgRepo,
			Cache:        cacheSvc,
			Metrics:      metricsSvc,
			Validator:    validate,
			Logger:       logr,
			Rules:        rules,
			CacheTTL:     cfg.Analytics.CacheTTL,
		})
		analyticsHandler = handler.NewAnalyticsHandler(analyticsSvc, metricsSvc, cfg.Analytics.RankingLimit, cfg.Leave.Location)
	}

	departmentHandler := handler.NewDepartmentHandler(leaveSvc)
	authHandler := handler.NewAuthHandler(sessionSvc, cfg.Auth.CorpID)
	adminHandler := handler.NewAdminHandler(cacheSvc, accessSvc, logr)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, readinessChecks(db.PingContext, redisClient))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Timeout(cfg.Leave.DefaultTimeout))

	api.GET("/auth/config", authHandler.Config)
	if cfg.Auth.DevLoginEnabled && cfg.Env != config.EnvProduction {
		api.POST("/auth/dev-login", authHandler.DevLogin)
	}

	secured := api.Group("")
	secured.Use(middleware.RequireSession(sessionSvc))
	secured.GET("/auth/me", authHandler.Me)
	secured.POST("/auth/logout", authHandler.Logout)

	secured.GET("/departments", departmentHandler.List)
	secured.GET("/leave/types", leaveHandler.Types)
	secured.GET("/leave/summary", leaveHandler.MonthlySummary)
	secured.GET("/leave/detail", leaveHandler.DailyDetail)
	secured.GET("/leave/daily", leaveHandler.DailyCount)
	secured.POST("/leave/calendar", leaveHandler.Calendar)
	secured.GET("/leave/export", middleware.Audit(logr, "leave.export"), leaveHandler.Export)

	analytics := secured.Group("/analytics")
	analytics.GET("/trend", analyticsHandler.MonthlyTrend)
	analytics.GET("/types", analyticsHandler.TypeDistribution)
	analytics.GET("/departments", analyticsHandler.DepartmentComparison)
	analytics.GET("/weekdays", analyticsHandler.WeekdayDistribution)
	analytics.GET("/ranking", analyticsHandler.EmployeeRanking)

	admin := secured.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/system", analyticsHandler.System)
	admin.POST("/cache/invalidate", middleware.Audit(logr, "cache.invalidate"), adminHandler.InvalidateCache)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users", middleware.Audit(logr, "access.grant"), adminHandler.AddUser)
	admin.DELETE("/users/:mobile", middleware.Audit(logr, "access.revoke"), adminHandler.RemoveUser)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func readinessChecks(pingDB handler.ReadinessCheck, redisClient *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{"database": pingDB}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}
