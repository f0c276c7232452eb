package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ogforum/excovote/internal/app"
	"github.com/ogforum/excovote/internal/auth"
	"github.com/ogforum/excovote/internal/config"
	"github.com/ogforum/excovote/internal/logger"
	"github.com/ogforum/excovote/pkg/matchsvc"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))

	adminAuth := auth.New(cfg.Admins)

	// An external matcher is optional. Without one the app falls back to
	// the in-process matcher backed by the candidate store.
	var matcher matchsvc.Client
	if cfg.MatcherURL != "" {
		matcher = matchsvc.NewHTTPClient(cfg.MatcherURL, appLog)
		appLog.Info("Using external name matcher", "url", cfg.MatcherURL)
	}

	a, err := app.New(appLog, cfg.DBPath, matcher, adminAuth, cfg.BaseURL)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}
	defer a.Close()

	if err := a.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatal(err)
	}
}
