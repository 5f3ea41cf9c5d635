// Command forohub runs the ForoHub authentication API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/forohub/api"
	"github.com/kbukum/forohub/auth"
	"github.com/kbukum/forohub/auth/jwt"
	"github.com/kbukum/forohub/auth/password"
	"github.com/kbukum/forohub/component"
	"github.com/kbukum/forohub/config"
	"github.com/kbukum/forohub/database"
	"github.com/kbukum/forohub/logger"
	"github.com/kbukum/forohub/observability"
	"github.com/kbukum/forohub/resilience"
	"github.com/kbukum/forohub/server"
	"github.com/kbukum/forohub/users"
	"github.com/kbukum/forohub/version"
)

const gracefulTimeout = 15 * time.Second

func main() {
	configFile := pflag.StringP("config", "c", "", "path to config.yml (searched in the usual locations when empty)")
	envFile := pflag.String("env-file", "", "path to a .env file")
	showVersion := pflag.BoolP("version", "v", false, "print the version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println(version.Short())
		return
	}

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "forohub: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&cfg.Logging, cfg.Service.Name)
	logger.SetGlobalLogger(log)

	if err := run(cfg, log); err != nil {
		log.Error("forohub stopped with error", logger.Fields(logger.FieldError, err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serviceVersion := cfg.Service.Version
	if serviceVersion == "" {
		serviceVersion = version.Short()
	}
	log.Info("starting forohub", logger.Fields(
		"version", serviceVersion,
		"environment", cfg.Service.Environment,
	))

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Telemetry, observability.Service{
		Name:        cfg.Service.Name,
		Version:     serviceVersion,
		Environment: cfg.Service.Environment,
	}, log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			log.Warn("telemetry shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	metrics, err := observability.NewAuthMetrics(observability.Meter("forohub/auth"))
	if err != nil {
		return fmt.Errorf("auth metrics: %w", err)
	}

	hasher := password.NewHasher(cfg.Auth.Password)
	registry := component.NewRegistry(log)

	dbComp := database.NewComponent(cfg.Database, log).
		WithMigrations(users.Migrations()).
		WithAutoMigrate(users.Models()...).
		WithSeed(users.SeedProfiles)
	if err := registry.Register(dbComp); err != nil {
		return err
	}
	if err := registry.StartAll(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
		defer cancel()
		if err := registry.StopAll(stopCtx); err != nil {
			log.Error("shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	repo := users.NewRepository(dbComp.DB())
	accounts := users.NewService(repo, hasher, cfg.Auth.Password.MinLength, log)
	if cfg.Admin.Enabled() {
		if err := accounts.EnsureAdmin(ctx, cfg.Admin.Nombre, cfg.Admin.Email, cfg.Admin.Contrasena); err != nil {
			return fmt.Errorf("seed administrator: %w", err)
		}
	}

	codec, err := jwt.NewCodec(cfg.Auth.JWT)
	if err != nil {
		return err
	}
	verifier := auth.NewVerifier(repo, hasher, log,
		auth.WithTracer(observability.Tracer("forohub/auth")),
		auth.WithMetrics(metrics),
	)

	var loginLimiter *resilience.KeyedLimiter
	if cfg.Auth.LoginLimit.Enabled {
		loginLimiter = resilience.NewKeyedLimiter(cfg.Auth.LoginLimit)
	}

	srv := server.New(cfg.Server, log)
	api.Register(srv.GinEngine(), api.Deps{
		Verifier:     verifier,
		Tokens:       codec,
		Store:        repo,
		Accounts:     accounts,
		Metrics:      metrics,
		Log:          log,
		LoginLimiter: loginLimiter,
	})
	srv.RegisterDefaultEndpoints(cfg.Service.Name, registry.HealthAll)

	if err := registry.Register(server.NewComponent(srv)); err != nil {
		return err
	}
	if err := registry.StartAll(ctx); err != nil {
		return err
	}

	log.Info("forohub ready, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, stopping")
	return nil
}
