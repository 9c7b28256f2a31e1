package main

import (
	"fmt"
	"log"
	"os"

	"stochastic-dispatch/internal/api"
	"stochastic-dispatch/internal/api/handlers"
	"stochastic-dispatch/internal/config"
	"stochastic-dispatch/internal/data"

	"github.com/gin-gonic/gin"
)

func main() {
	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	cfgPath := os.Getenv("DISPATCH_CONFIG")
	if cfgPath == "" {
		cfgPath = "examples/dispatch.yaml"
	}

	if wd, err := os.Getwd(); err == nil {
		log.Printf("Working directory: %s", wd)
	}
	log.Printf("Loading dispatch config from %s", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	m, err := data.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to build market: %v", err)
	}

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	runs := handlers.NewRunCache(handlers.RunTTLFromEnv())
	defer runs.Close()
	router := api.NewRouter(handlers.NewMarketHandler(m, runs))

	// Start server
	addr := fmt.Sprintf(":%s", port)
	log.Printf("Starting API server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
