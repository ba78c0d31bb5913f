package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tumaini/sponsorship/internal/appeals"
	"github.com/tumaini/sponsorship/internal/cases"
	"github.com/tumaini/sponsorship/internal/detection"
	"github.com/tumaini/sponsorship/internal/donations"
	"github.com/tumaini/sponsorship/internal/gate"
	"github.com/tumaini/sponsorship/internal/notifications"
	"github.com/tumaini/sponsorship/internal/risk"
	"github.com/tumaini/sponsorship/internal/scheduler"
	"github.com/tumaini/sponsorship/internal/sponsors"
	"github.com/tumaini/sponsorship/pkg/common"
	"github.com/tumaini/sponsorship/pkg/config"
	"github.com/tumaini/sponsorship/pkg/database"
	"github.com/tumaini/sponsorship/pkg/logger"
	"github.com/tumaini/sponsorship/pkg/middleware"
	"github.com/tumaini/sponsorship/pkg/redis"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load("sponsorship")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer database.Close(pool)

	if err := database.RunMigrations(&cfg.Database, cfg.Fraud.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	restrictedLimit, err := decimal.NewFromString(cfg.Fraud.RestrictedLimit)
	if err != nil {
		logger.Fatal("invalid restricted monthly limit", zap.String("value", cfg.Fraud.RestrictedLimit), zap.Error(err))
	}

	// Repositories
	riskRepo := risk.NewRepository(pool)
	caseRepo := cases.NewRepository(pool)
	appealRepo := appeals.NewRepository(pool)
	detectionRepo := detection.NewRepository(pool)
	gateRepo := gate.NewRepository(pool)
	donationRepo := donations.NewRepository(pool)
	sponsorRepo := sponsors.NewRepository(pool)
	notificationRepo := notifications.NewRepository(pool)

	// Services
	sponsorService := sponsors.NewService(sponsorRepo, redisClient)
	caseService := cases.NewService(caseRepo, sponsorService, restrictedLimit)
	riskService := risk.NewService(riskRepo, caseService)
	detectionService := detection.NewService(detectionRepo, riskService, caseService)
	appealService := appeals.NewService(appealRepo, sponsorService)
	gateService := gate.NewService(gateRepo, restrictedLimit)
	donationService := donations.NewService(donationRepo, gateService, detectionService)
	notificationService := notifications.NewService(notificationRepo, redisClient)

	// Handlers
	riskHandler := risk.NewHandler(riskService)
	caseHandler := cases.NewHandler(caseService)
	appealHandler := appeals.NewHandler(appealService)
	gateHandler := gate.NewHandler(gateService)
	donationHandler := donations.NewHandler(donationService)
	sponsorHandler := sponsors.NewHandler(sponsorService)
	notificationHandler := notifications.NewHandler(notificationService)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(cfg.Server.ServiceName))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Correlation-ID"}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", common.HealthCheckWithDeps(cfg.Server.ServiceName, version, map[string]func() error{
		"postgres": func() error { return pool.Ping(context.Background()) },
		"redis":    func() error { return redisClient.Ping(context.Background()).Err() },
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.AuthMiddleware(cfg.JWT.Secret)
	api := router.Group("/api/v1", auth)
	{
		donationGroup := api.Group("/donations")
		{
			donationGroup.POST("", middleware.RequireRole(middleware.RoleSponsor), donationHandler.SubmitDonation)
			donationGroup.GET("", middleware.RequireRole(middleware.RoleSponsor), donationHandler.ListMyDonations)
			donationGroup.GET("/gate", middleware.RequireRole(middleware.RoleSponsor), gateHandler.CheckGate)
			donationGroup.POST("/:donation_id/complete",
				middleware.RequireRole(middleware.RoleStaff, middleware.RoleAdmin), donationHandler.CompleteDonation)
		}

		sponsorGroup := api.Group("/sponsors")
		{
			sponsorGroup.GET("/me/flag-status", middleware.RequireRole(middleware.RoleSponsor), sponsorHandler.GetMyFlagStatus)
			sponsorGroup.GET("/:sponsor_id/flag-status",
				middleware.RequireRole(middleware.RoleStaff, middleware.RoleAdmin), sponsorHandler.GetFlagStatus)
		}

		fraudGroup := api.Group("/fraud")
		{
			staffOrAdmin := middleware.RequireRole(middleware.RoleStaff, middleware.RoleAdmin)
			adminOnly := middleware.RequireRole(middleware.RoleAdmin)

			fraudGroup.POST("/reports", staffOrAdmin, riskHandler.CreateStaffReport)
			fraudGroup.GET("/sponsors/:sponsor_id/risk", staffOrAdmin, riskHandler.GetSponsorRisk)
			fraudGroup.GET("/sponsors/:sponsor_id/signals", staffOrAdmin, riskHandler.ListSponsorSignals)
			fraudGroup.POST("/sponsors/:sponsor_id/recalculate", adminOnly, riskHandler.RecalculateSponsorRisk)
			fraudGroup.POST("/sponsors/:sponsor_id/action", adminOnly, caseHandler.TakeAction)

			fraudGroup.GET("/cases", staffOrAdmin, caseHandler.ListCases)
			fraudGroup.GET("/cases/:case_id", staffOrAdmin, caseHandler.GetCase)

			fraudGroup.POST("/appeals", middleware.RequireRole(middleware.RoleSponsor), appealHandler.SubmitAppeal)
			fraudGroup.GET("/appeals", staffOrAdmin, appealHandler.ListAppeals)
			fraudGroup.POST("/appeals/:appeal_id/review", adminOnly, appealHandler.ReviewAppeal)
		}

		internalGroup := api.Group("/internal", middleware.RequireRole(middleware.RoleStaff, middleware.RoleAdmin))
		{
			internalGroup.POST("/notifications/claim", notificationHandler.Claim)
		}
	}

	// Background decay worker
	workerCtx, workerCancel := context.WithCancel(context.Background())
	decayWorker := scheduler.NewWorker(
		riskService,
		logger.Get(),
		time.Duration(cfg.Fraud.DecayIntervalHours)*time.Hour,
		cfg.Fraud.DecayLookbackDays,
		cfg.Fraud.DecayPercent,
	)
	go decayWorker.Start(workerCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	workerCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
