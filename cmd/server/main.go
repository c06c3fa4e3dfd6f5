package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"virtual-tour-backend/internal/config"
	"virtual-tour-backend/internal/events"
	"virtual-tour-backend/internal/handlers"
	"virtual-tour-backend/internal/middleware"
	"virtual-tour-backend/internal/pipeline"
	"virtual-tour-backend/internal/storage"
	"virtual-tour-backend/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// One store instance for the whole process, injected everywhere.
	memStore := store.NewMemStore()

	fileStore, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	hub := events.NewHub()
	runner := pipeline.NewRunner(memStore, pipeline.StaticDetector{}, hub)

	// Initialize handlers
	toursHandler := handlers.NewToursHandler(memStore)
	uploadHandler := handlers.NewUploadHandler(memStore, fileStore, runner, hub, cfg.MaxUploadFiles, cfg.MaxUploadBytes)
	photosHandler := handlers.NewPhotosHandler(memStore)
	roomsHandler := handlers.NewRoomsHandler(memStore)
	eventsHandler := handlers.NewEventsHandler(memStore, hub)

	// Setup router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	// Health check
	router.GET("/health", handlers.HealthHandler)

	// Uploaded originals
	router.Static(storage.URLPrefix, fileStore.Dir())

	// API routes
	api := router.Group("/api")
	api.POST("/tours", toursHandler.CreateTour)
	api.GET("/tours/:id", toursHandler.GetTour)
	api.PATCH("/tours/:id", toursHandler.UpdateTour)
	api.POST("/tours/:id/photos", uploadHandler.Upload)
	api.GET("/tours/:id/photos", photosHandler.GetPhotos)
	api.GET("/tours/:id/rooms", roomsHandler.GetRooms)
	api.GET("/tours/:id/events", eventsHandler.Stream)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	// Join in-flight pipeline runs so no tour is left mid-stage untracked.
	if err := runner.Shutdown(shutdownCtx); err != nil {
		log.Printf("Pipeline shutdown: %v", err)
	}
	log.Println("Server stopped")
}
