package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/uwpokerclub/clubhouse/config"
	"github.com/uwpokerclub/clubhouse/db"
	"github.com/uwpokerclub/clubhouse/handlers"
	"github.com/uwpokerclub/clubhouse/live"
	"github.com/uwpokerclub/clubhouse/repositories"
	api "github.com/uwpokerclub/clubhouse/routes"
	"github.com/uwpokerclub/clubhouse/scoring"
	"github.com/uwpokerclub/clubhouse/services"
	"github.com/uwpokerclub/clubhouse/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	hub := live.NewHub(logger)
	go hub.Run()
	logger.Info("WebSocket hub started")

	txManager := repositories.NewTxManager(dbConn)
	semesterRepo := repositories.NewPostgresSemesterRepository(dbConn)
	memberRepo := repositories.NewPostgresMemberRepository(dbConn)
	membershipRepo := repositories.NewPostgresMembershipRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	entryRepo := repositories.NewPostgresEntryRepository(dbConn)
	rankingRepo := repositories.NewPostgresRankingRepository(dbConn)
	adminRepo := repositories.NewPostgresAdminRepository(dbConn)
	logger.Info("repositories initialized")

	authService := services.NewAuthService(adminRepo, cfg.JWTSecretKey)
	semesterService := services.NewSemesterService(semesterRepo)
	memberService := services.NewMemberService(memberRepo)
	membershipService := services.NewMembershipService(membershipRepo)
	eventService := services.NewEventService(
		txManager,
		eventRepo,
		entryRepo,
		rankingRepo,
		scoring.DefaultTable(),
		hub,
		logger,
	)
	entryService := services.NewEntryService(txManager, entryRepo, eventRepo)
	rankingService := services.NewRankingService(rankingRepo, semesterRepo, uploader)
	dashboardService := services.NewDashboardService(semesterRepo, membershipRepo, eventRepo, rankingRepo)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService)
	semesterHandler := handlers.NewSemesterHandler(semesterService, dashboardService)
	memberHandler := handlers.NewMemberHandler(memberService)
	membershipHandler := handlers.NewMembershipHandler(membershipService)
	eventHandler := handlers.NewEventHandler(eventService)
	participantHandler := handlers.NewParticipantHandler(entryService)
	rankingHandler := handlers.NewRankingHandler(rankingService)
	webSocketHandler := handlers.NewWebSocketHandler(hub)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		semesterHandler,
		memberHandler,
		membershipHandler,
		eventHandler,
		participantHandler,
		rankingHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
