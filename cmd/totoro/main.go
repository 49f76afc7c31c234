package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/terraincognita07/totoro/internal/api"
	"github.com/terraincognita07/totoro/internal/cli"
	"github.com/terraincognita07/totoro/internal/config"
	"github.com/terraincognita07/totoro/internal/db"
	"github.com/terraincognita07/totoro/internal/i18n"
	"github.com/terraincognita07/totoro/internal/logger"
	"github.com/terraincognita07/totoro/internal/services"
)

const usage = `usage: totoro [command]

commands:
  serve           run the HTTP API (default)
  clear-data      delete every recorded period and the statistics
  recompute       rebuild the statistics from the recorded periods
  set-passphrase  enable, change or remove the owner lock
  secret          print a random value for TOTORO_AUTH_SECRET_KEY
`

var errUnknownCommand = errors.New("unknown command")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUnknownCommand) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "totoro: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin *os.File, stdout io.Writer, stderr io.Writer) error {
	command := "serve"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "secret":
		return cli.RunSecretCommand(stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	case "serve", "clear-data", "recompute", "set-passphrase":
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, command)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch command {
	case "clear-data":
		return cli.RunClearDataCommand(cfg.Database.Path, stdout)
	case "recompute":
		return cli.RunRecomputeCommand(cfg.Database.Path, stdout)
	case "set-passphrase":
		return cli.RunSetPassphraseCommand(cfg.Database.Path, cli.TerminalPassphraseReader(stdin, stderr), stdout)
	default:
		return serve(cfg)
	}
}

func serve(cfg *config.Config) error {
	log := logger.Setup(cfg.Server)
	location := cfg.Location()
	time.Local = location

	secretKey, err := resolveSecretKey(cfg.Auth, log)
	if err != nil {
		return err
	}

	database, err := db.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	i18nManager, err := i18n.NewManager(cfg.I18n.DefaultLanguage, i18n.Locales())
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	handler, err := api.NewHandler(database, i18nManager, api.Options{
		SecretKey:    secretKey,
		TokenTTL:     cfg.Auth.TokenTTL,
		Location:     location,
		CookieSecure: cfg.Server.CookieSecure,
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := newApp(handler)

	notifier := services.NewNotificationService(handler.Reminders(), notificationConfig(cfg.Telegram), log)
	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()
	notifier.Start(lifecycleCtx)
	if !notifier.Enabled() {
		log.Info("telegram reminders disabled")
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("totoro listening",
		"port", cfg.Server.Port,
		"db", cfg.Database.Path,
		"tz", location.String())
	if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newApp(handler *api.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Totoro",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())
	api.RegisterRoutes(app, handler)
	return app
}

// resolveSecretKey falls back to a per-process random key, so tokens do not
// survive a restart unless auth.secret_key is configured.
func resolveSecretKey(cfg config.AuthConfig, log *slog.Logger) (string, error) {
	if cfg.SecretKey != "" {
		return cfg.SecretKey, nil
	}

	secret, err := cli.GenerateSecretKey(cli.DefaultSecretLength)
	if err != nil {
		return "", err
	}
	log.Warn("auth.secret_key is not set, using a random key for this process")
	return secret, nil
}

func notificationConfig(cfg config.TelegramConfig) services.NotificationConfig {
	return services.NotificationConfig{
		BotToken:          cfg.BotToken,
		ChatID:            cfg.ChatID,
		PeriodReminder:    cfg.PeriodReminderEnabled,
		FertilityReminder: cfg.FertilityReminderEnabled,
		Interval:          cfg.Interval,
	}
}
