package main

import (
	"log"

	"github.com/velotrace/velotrace-backend-go/internal/api"
	"github.com/velotrace/velotrace-backend-go/internal/config"
	"github.com/velotrace/velotrace-backend-go/internal/database"
	"github.com/velotrace/velotrace-backend-go/internal/handler"
	"github.com/velotrace/velotrace-backend-go/internal/metadata"
	"github.com/velotrace/velotrace-backend-go/internal/repository"
	"github.com/velotrace/velotrace-backend-go/internal/service"
)

func main() {
	cfg := config.Load()

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	db := database.GetDB()

	tripRepo := repository.NewTripRepository(db)
	segmentRepo := repository.NewSegmentRepository(db)
	routeRepo := repository.NewRouteRepository(db)
	metaStore := metadata.NewStore(db)

	tripService, err := service.NewTripService(cfg, tripRepo, segmentRepo, metaStore)
	if err != nil {
		// The one hard-stop condition: no output directory, no run.
		log.Fatal("Failed to initialize trip service:", err)
	}
	routeService := service.NewRouteService(cfg, segmentRepo, routeRepo)

	router := api.SetupRouter(cfg,
		handler.NewTripHandler(tripService),
		handler.NewRouteHandler(routeService),
	)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
