package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/example/angagu/internal/config"
	"github.com/example/angagu/internal/database"
	"github.com/example/angagu/internal/handlers"
	applog "github.com/example/angagu/internal/logger"
	"github.com/example/angagu/internal/middleware"
	"github.com/example/angagu/internal/repository"
	"github.com/example/angagu/internal/routes"
	"github.com/example/angagu/internal/services"
	"github.com/example/angagu/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := applog.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DBDriver, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}

	app, err := newApp(cmd.Context(), cfg, db, log)
	if err != nil {
		return err
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.Infof("starting server on :%s", cfg.AppPort)
	return app.Listen(":" + cfg.AppPort)
}

// newApp builds the fiber application with every dependency wired in.
func newApp(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logrus.Logger) (*fiber.App, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	uploader, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	sms := services.NewSensGateway(db, cfg.SMS, log)
	ledger := services.NewTokenLedger(cfg.RedisAddr)
	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat, log)

	app := fiber.New(fiber.Config{
		AppName:      "ANGAGU",
		ErrorHandler: handlers.ErrorHandler(log),
		BodyLimit:    32 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(middleware.Metrics())

	if local, ok := uploader.(*storage.LocalUploader); ok {
		app.Static(cfg.Storage.PublicURL, local.Root())
	}

	routes.Register(app, routes.Handlers{
		Customer: handlers.NewCustomerHandler(repository.NewCustomerRepository(db), sms, ledger, cfg, log),
		Company:  handlers.NewCompanyHandler(repository.NewCompanyRepository(db), sms, uploader, telegram, cfg, log),
		Admin:    handlers.NewAdminHandler(repository.NewAdminRepository(db), cfg),
	}, cfg.JWTSecret)

	return app, nil
}
