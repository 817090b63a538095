package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/terraincognita07/khare/internal/api"
	"github.com/terraincognita07/khare/internal/cli"
	"github.com/terraincognita07/khare/internal/config"
	"github.com/terraincognita07/khare/internal/db"
	"github.com/terraincognita07/khare/internal/email"
	"github.com/terraincognita07/khare/internal/logging"
	"gorm.io/gorm"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "env init failed: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config init failed: %v\n", err)
		os.Exit(1)
	}
	time.Local = cfg.Location

	log := logging.New(cfg.Env, os.Stdout)
	slog.SetDefault(log)

	command, args := splitCommand(os.Args[1:])
	if err := run(command, args, cfg, log); err != nil {
		log.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func splitCommand(args []string) (string, []string) {
	if len(args) == 0 || len(args[0]) == 0 || args[0][0] == '-' {
		return "serve", args
	}
	return args[0], args[1:]
}

func run(command string, args []string, cfg config.Config, log *slog.Logger) error {
	ctx := logging.WithLogger(context.Background(), log)

	switch command {
	case "serve":
		return serve(cfg, log)
	case "create-admin":
		flags := flag.NewFlagSet(command, flag.ContinueOnError)
		address := flags.String("email", "", "admin email address")
		fullName := flags.String("name", "", "admin full name")
		if err := flags.Parse(args); err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		password, err := cli.PromptPassword(os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
		return cli.RunCreateAdminCommand(ctx, database, *address, *fullName, password, os.Stdout)
	case "set-role":
		flags := flag.NewFlagSet(command, flag.ContinueOnError)
		address := flags.String("email", "", "account email address")
		role := flags.String("role", "", "admin, contractor or client")
		if err := flags.Parse(args); err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		return cli.RunSetRoleCommand(ctx, database, *address, *role, os.Stdout)
	case "reset-password":
		flags := flag.NewFlagSet(command, flag.ContinueOnError)
		address := flags.String("email", "", "account email address")
		if err := flags.Parse(args); err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		password, err := cli.PromptPassword(os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
		return cli.RunResetPasswordCommand(ctx, database, *address, password, os.Stdout)
	default:
		return fmt.Errorf("unknown command %q (want serve, create-admin, set-role or reset-password)", command)
	}
}

func openDatabase(cfg config.Config) (*gorm.DB, error) {
	database, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	return database, nil
}

func serve(cfg config.Config, log *slog.Logger) error {
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	deps := api.NewDependencies(database, newMailer(cfg, log), api.ServiceConfig{
		SecretKey:  cfg.SecretKey,
		SessionTTL: cfg.SessionTTL,
		CodeTTL:    cfg.CodeTTL,
		EchoCodes:  cfg.DemoEchoCodes,
		PublicURL:  cfg.PublicURL,
	})
	handler, err := api.NewHandler(deps, api.Options{
		CookieSecure:      cfg.CookieSecure,
		AttemptLimit:      cfg.AttemptLimit,
		EmailAttemptLimit: cfg.EmailAttemptLimit,
		AttemptWindow:     cfg.AttemptWindow,
		Logger:            log,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Khare Construction",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New(compressMiddlewareConfig()))
	app.Use(api.CORS(cfg.CORSOrigins))
	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		handler.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownDeadline)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("Khare listening",
		"address", "http://0.0.0.0"+cfg.HTTPAddress(),
		"db_driver", cfg.DBDriver,
		"email_mode", cfg.EmailMode,
		"tz", cfg.Location.String(),
	)
	if err := app.Listen(cfg.HTTPAddress()); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newMailer(cfg config.Config, log *slog.Logger) email.Sender {
	if cfg.EmailMode == config.EmailModeSMTP {
		return email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		})
	}
	return email.NewLogSender(log)
}

// compressMiddlewareConfig leaves the event stream uncompressed so events flush as they are written.
func compressMiddlewareConfig() compress.Config {
	return compress.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == api.ProjectFeedPath
		},
	}
}
