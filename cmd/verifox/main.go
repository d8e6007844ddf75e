package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/verifox/VeriFox/app/repository"
	"github.com/verifox/VeriFox/internal/pkg/cache"
	"github.com/verifox/VeriFox/internal/pkg/config"
	"github.com/verifox/VeriFox/internal/pkg/database"
	"github.com/verifox/VeriFox/internal/pkg/env"
	"github.com/verifox/VeriFox/internal/pkg/ledger"
	"github.com/verifox/VeriFox/internal/pkg/router"
	"github.com/verifox/VeriFox/internal/pkg/verification"
	"github.com/verifox/VeriFox/internal/pkg/webhook"
)

func main() {
	env.SetupEnvFile()
	cfg := config.Load()

	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalRepositories()

	dispatcher := webhook.NewDispatcher(
		cache.GetClient(),
		repos.WebhookLog,
		cfg.WebhookWorkers,
		cfg.WebhookAttempts,
		cfg.WebhookBackoff,
		cfg.WebhookTimeout,
	)
	dispatcher.Start()

	ledgerClient := ledger.NewClient(cfg.LedgerBase, cfg.LedgerTimeout)
	resultCache := verification.NewResultCache(repos.Verification, cfg.CacheTTL)
	svc := verification.NewService(cfg, repos, ledgerClient, resultCache, dispatcher)

	app := fiber.New(fiber.Config{AppName: "VeriFox"})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())
	router.InstallRouter(app, cfg, svc)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-shutdown
		log.Println("Shutting down...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Printf("Server stopped: %v", err)
	}
	dispatcher.Stop()
}
