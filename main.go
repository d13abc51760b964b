package main

import (
	"log"

	"github.com/SundayYogurt/lending_portal/config"
	"github.com/SundayYogurt/lending_portal/internal/api"
	"github.com/SundayYogurt/lending_portal/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if err := logger.Init(cfg.LogLevel, "lending-portal"); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	if err := api.StartServer(cfg); err != nil {
		logger.Error("server stopped", err)
	}
}
