package main

import (
	"log"

	"github.com/roadsense/telemetry-hub/internal/api"
	"github.com/roadsense/telemetry-hub/internal/broker"
	"github.com/roadsense/telemetry-hub/internal/config"
	"github.com/roadsense/telemetry-hub/internal/database"
	"github.com/roadsense/telemetry-hub/internal/handler"
	"github.com/roadsense/telemetry-hub/internal/repository"
	"github.com/roadsense/telemetry-hub/internal/service"
)

func main() {
	cfg := config.Load()

	dbConfig := database.Config{
		Driver: cfg.DriverName(),
		DSN:    cfg.DSN(),
	}
	if err := database.Init(dbConfig); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	db := database.GetDB()
	if err := database.Migrate(db, cfg.DriverName()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	registry := broker.NewRegistry()
	dispatcher := broker.NewDispatcher(registry, cfg.BroadcastTimeout)

	repo := repository.NewRecordRepository(db, cfg.DriverName())
	recordService := service.NewRecordService(repo, dispatcher)

	recordHandler := handler.NewRecordHandler(recordService)
	wsHandler := handler.NewWSHandler(registry)

	router := api.SetupRouter(recordHandler, wsHandler)

	log.Printf("Server starting on %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
