package main

import (
	"context"
	"log"

	"partner-incentives-be/internal/bootstrap"
	"partner-incentives-be/internal/config"
	"partner-incentives-be/internal/server"
	"partner-incentives-be/internal/tracer"
	"partner-incentives-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
