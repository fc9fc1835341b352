package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/arintala/wanderplan/internal/logger"
	"github.com/arintala/wanderplan/internal/server"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	logger.Setup()

	if err := server.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
