package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/unfreeze-app/unfreeze-backend/internal/classify"
	"github.com/unfreeze-app/unfreeze-backend/internal/config"
	"github.com/unfreeze-app/unfreeze-backend/internal/content"
	"github.com/unfreeze-app/unfreeze-backend/internal/database"
	"github.com/unfreeze-app/unfreeze-backend/internal/handlers"
	"github.com/unfreeze-app/unfreeze-backend/internal/repository"
	cronjobs "github.com/unfreeze-app/unfreeze-backend/internal/scheduler"
	"github.com/unfreeze-app/unfreeze-backend/internal/services"
	"github.com/unfreeze-app/unfreeze-backend/pkg/logger"
	"github.com/unfreeze-app/unfreeze-backend/pkg/middleware"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// Static mission tables, loaded once and injected
	tables, err := content.Load(cfg.ContentDir)
	if err != nil {
		log.Fatalf("Content load error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	missionRepo := repository.NewMissionRepository(db)

	// --- Services ---
	classifier := classify.NewHTTPClassifier(cfg.ClassifierURL)
	userService := services.NewUserService(userRepo, classifier, tables)
	clusterService := services.NewClusterService(userRepo)
	missionService := services.NewMissionService(userRepo, missionRepo, clusterService, tables)
	claimService := services.NewClaimService(userRepo, missionRepo, cfg.ClaimWindow)
	leaderboardService := services.NewLeaderboardService(userRepo)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	missionHandler := handlers.NewMissionHandler(missionService, claimService, userService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/inputs", userHandler.AddInputsHandler).Methods("POST")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")

	// Mission routes
	protectedMissionRoutes := router.PathPrefix("/missions").Subrouter()
	protectedMissionRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedMissionRoutes.HandleFunc("/generate", missionHandler.GenerateMissionsHandler).Methods("POST")
	protectedMissionRoutes.HandleFunc("/claim", missionHandler.ClaimMissionHandler).Methods("POST")
	protectedMissionRoutes.HandleFunc("/current", missionHandler.GetCurrentMissionHandler).Methods("GET")

	// Leaderboard routes
	leaderboardRoutes := router.PathPrefix("/leaderboard").Subrouter()
	leaderboardRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	leaderboardRoutes.HandleFunc("/top", leaderboardHandler.GetTopHandler).Methods("GET")
	leaderboardRoutes.HandleFunc("/placement/{id}", leaderboardHandler.GetPlacementHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Start the epoch scheduler
	missionCron, err := cronjobs.StartMissionCron(missionService, cfg.GenerationSpec)
	if err != nil {
		log.Fatalf("Scheduler error: %v", err)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: c.Handler(router),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		fmt.Printf("Server running on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutdown signal received")

	// Stop the scheduler between ticks, then drain in-flight requests.
	<-missionCron.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server shutdown failed")
	}
	logger.Log.Info("Server stopped")
}
