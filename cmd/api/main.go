package main

import (
	"log"

	"baustelle-wms-api-server/config"
	"baustelle-wms-api-server/internal/api/routes"
	"baustelle-wms-api-server/internal/auth"
	"baustelle-wms-api-server/internal/cache"
	"baustelle-wms-api-server/internal/database"
	"baustelle-wms-api-server/internal/notify"
	"baustelle-wms-api-server/internal/s3"
	"baustelle-wms-api-server/internal/socket"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional, real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	auth.Init(cfg.JWT.Secret, cfg.JWT.Expiration)

	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	if err := database.SeedAdmin(db); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	cacheClient := cache.New(cfg.Redis.Addr)
	defer cacheClient.Close()

	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		log.Fatalf("Failed to initialize S3 uploader: %v", err)
	}

	wsHub := socket.NewHub()
	notifier := &notify.Service{DB: db, Hub: wsHub, Cache: cacheClient}

	router := routes.SetupRouter(db, s3Uploader, wsHub, cacheClient, notifier)

	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
