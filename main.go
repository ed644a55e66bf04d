package main

import (
	"context"
	"os"
	"time"

	"enrollment-app/config"
	"enrollment-app/database"
	routes "enrollment-app/internal/app/http"
	"enrollment-app/internal/domain/payments"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	database.InitDB()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("CORS_ORIGIN")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r)

	// Abandoned checkouts expire in the background so their idempotency keys
	// become reusable.
	sweeper := payments.NewSweeper(
		payments.NewStore(database.DB),
		time.Duration(config.INTENT_TTL_MINUTES)*time.Minute,
		time.Duration(config.SWEEP_INTERVAL_SECONDS)*time.Second,
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx)

	r.Run(":" + config.PORT)
}
