package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"listingopt/internal/app"
	"listingopt/internal/config"
	"listingopt/internal/handler"
	"listingopt/internal/logging"
)

func main() {

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	slog.SetDefault(logging.New(cfg.Log.Level, cfg.Log.Format))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	svc, closeStore, err := app.NewListingService(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("error building listing service: %v", err)
	}
	defer closeStore()

	listingHandler := handler.NewListingHandler(svc)

	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger())

	allowedOrigins := []string{"http://localhost:3000"}

	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
	}))

	handler.RegisterRoutes(r, listingHandler)

	slog.Info("listening", "port", cfg.Port)

	err = r.Run(":" + cfg.Port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
