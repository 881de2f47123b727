package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/pixgrid/pix-grabber/internal/commons"
	"github.com/pixgrid/pix-grabber/internal/server"
)

func main() {
	// Load .env file if present (ignore errors)
	_ = godotenv.Load()

	// Parse flags
	port := flag.String("port", getEnv("PORT", "8000"), "Server port")
	corsOrigin := flag.String("cors-origin", getEnv("CORS_ORIGIN", server.DefaultAllowedOrigin), "Allowed CORS origin")
	flag.Parse()

	provider := commons.NewClient("")
	srv := server.New(provider, server.Config{
		AllowedOrigins: []string{*corsOrigin},
	})

	log.Printf("Search proxy starting on http://localhost:%s", *port)
	log.Printf("Allowed origin: %s", *corsOrigin)

	if err := http.ListenAndServe(":"+*port, srv); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
