package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/pointdrop/leaderboard/internal/api"
	"github.com/pointdrop/leaderboard/internal/db"
	"github.com/pointdrop/leaderboard/internal/leaderboard"
	"github.com/pointdrop/leaderboard/internal/websocket"
	"github.com/pointdrop/leaderboard/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded: %v", err)
	}

	logger.SetLevel(logger.INFO)
	if err := logger.EnableFileLogging("./logs"); err != nil {
		logger.Fatal("Failed to enable file logging: %v", err)
	}

	logger.Info("Leaderboard service starting...")

	dbService, err := db.NewDBService(db.DefaultDBOperations{})
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}
	defer dbService.Close()

	wsManager := websocket.NewWebSocketManager()
	go wsManager.Run()

	svc := leaderboard.NewService(dbService, leaderboard.RandomReward, wsManager)

	h := api.NewHandler(svc)
	r := api.SetupRouter(h, wsManager)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("Server is listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("Failed to run server: %v", err)
	}
}
