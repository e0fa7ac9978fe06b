package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"boxplot/internal/config"
	"boxplot/internal/container"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appConfig.Server.GinMode != "" {
		gin.SetMode(appConfig.Server.GinMode)
	}

	ctx := context.Background()
	c, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create container: %v", err)
	}
	if err := c.Open(ctx); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer c.Shutdown(ctx)

	if appConfig.Preview.Enabled {
		preview, err := c.PreviewApp()
		if err != nil {
			log.Fatal("Failed to create preview app:", err)
		}
		go func() {
			if err := preview.Start(":" + appConfig.Preview.Port); err != nil {
				log.Printf("Preview server stopped: %v", err)
			}
		}()
	}

	server, err := c.APIServer()
	if err != nil {
		log.Fatal("Failed to create API server:", err)
	}
	log.Printf("Starting box plot API on :%s", appConfig.Server.Port)
	if err := server.Run(":" + appConfig.Server.Port); err != nil {
		log.Fatal("Server failed:", err)
	}
}
