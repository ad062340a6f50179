// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/promptsmith/promptsmith-api/controllers"
	dbm "github.com/promptsmith/promptsmith-api/db"
	"github.com/promptsmith/promptsmith-api/internal/auth/gate"
	"github.com/promptsmith/promptsmith-api/internal/auth/oath"
	"github.com/promptsmith/promptsmith-api/internal/auth/oath/totp"
	"github.com/promptsmith/promptsmith-api/internal/auth/password"
	"github.com/promptsmith/promptsmith-api/internal/auth/session"
	"github.com/promptsmith/promptsmith-api/internal/config"
	"github.com/promptsmith/promptsmith-api/internal/globals"
	"github.com/promptsmith/promptsmith-api/internal/helper"
	"github.com/promptsmith/promptsmith-api/internal/metrics"
	"github.com/promptsmith/promptsmith-api/internal/telemetry"
	"github.com/promptsmith/promptsmith-api/internal/tracing"
	"github.com/promptsmith/promptsmith-api/models"
	"github.com/promptsmith/promptsmith-api/routes"
)

var (
	Version     = "0.0.1-dev"
	BuildDate   string
	BuildCommit string
)

func init() {
	configPath := flag.String("config", "", "path to configuration file")
	migrateUpOne := flag.Bool("migrate-up1", false, "run database migrations up by one and then exit")
	migrateDownOne := flag.Bool("migrate-down1", false, "run database migrations down by one and then exit")
	listMigrationFlag := flag.Bool("list-migrations", false, "list all SQL migrations and then exit")
	viewMigrationFlag := flag.String("view-migration", "", "view a specific SQL migration and then exit")
	generateSecretFlag := flag.Bool("generate-totp-secret", false, "generate an admin TOTP secret, print it and exit")
	qrOutput := flag.String("qr-output", "", "with -generate-totp-secret, also write the provisioning QR code PNG to this file")
	hashPasswordFlag := flag.String("hash-password", "", "print the bcrypt hash of the given admin password and exit")
	versionFlag := flag.Bool("version", false, "print version and exit")

	flag.Parse()

	if *versionFlag {
		if BuildCommit == "" {
			BuildCommit = "unknown"
		}

		fmt.Printf("Version %s %s %s\n", Version, BuildCommit, BuildDate)
		os.Exit(0)
	}

	// Initialize configuration
	config.InitConfig(*configPath)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: helper.ParseLogLevel(config.ServiceLogLevel.GetString()),
	})))

	if *generateSecretFlag {
		generateTOTPSecret(*qrOutput)
	}

	if *hashPasswordFlag != "" {
		hash, err := password.GenerateHash(password.NewBcryptHasher(nil), *hashPasswordFlag)
		if err != nil {
			globals.LogAndExit(err.Error(), 1)
		}
		globals.LogAndExit(hash, 0)
	}

	if *listMigrationFlag {
		files, err := dbm.ListMigrations()
		if err != nil {
			globals.LogAndExit(err.Error(), 1)
		}
		for _, f := range files {
			fmt.Println(f)
		}
		os.Exit(0)
	}

	if *viewMigrationFlag != "" {
		sqlFile := dbm.ViewMigration(*viewMigrationFlag)
		if sqlFile == nil {
			globals.LogAndExit(fmt.Sprintf("migration %s not found", *viewMigrationFlag), 1)
		}
		globals.LogAndExit(string(sqlFile), 0)
	}

	if *migrateUpOne && *migrateDownOne {
		globals.LogAndExit("cannot run migrations for both up and down at the same time", 1)
	}

	if err := config.Validate(); err != nil {
		globals.LogAndExit(fmt.Sprintf("invalid configuration: %s", err), 1)
	}

	if !*migrateUpOne && !*migrateDownOne && !config.DatabaseAutoMigration.GetBool() {
		return
	}

	mgrHandler, err := dbm.NewMigrationHandler(config.GetDbURI())
	if err != nil {
		globals.LogAndExit(err.Error(), 1)
	}

	if *migrateUpOne || *migrateDownOne {
		step := 1
		if *migrateDownOne {
			step = -1
		}
		ver, err := mgrHandler.MigrationStep(step)
		if err != nil {
			globals.LogAndExit(err.Error(), 1)
		}
		globals.LogAndExit(fmt.Sprintf("Database schema at version %d", ver), 0)
	}

	// Run db migrations
	if err := mgrHandler.RunMigrations(); err != nil {
		log.Fatalf("Migrations failed: %s", err)
	}
}

// generateTOTPSecret prints a fresh admin secret with its provisioning URI and exits
func generateTOTPSecret(qrOutput string) {
	secret, err := oath.GenerateSecret()
	if err != nil {
		globals.LogAndExit(err.Error(), 1)
	}
	uri := oath.ProvisioningURI(secret, config.ServiceTotpAccount.GetString(), config.ServiceTotpIssuer.GetString())

	if qrOutput != "" {
		png, err := helper.GenerateTOTPQRCodePNG(uri)
		if err != nil {
			globals.LogAndExit(err.Error(), 1)
		}
		if err := os.WriteFile(qrOutput, png, 0o600); err != nil {
			globals.LogAndExit(err.Error(), 1)
		}
	}

	globals.LogAndExit(fmt.Sprintf("ADMIN_TOTP_SECRET=%s\n%s", secret, uri), 0)
}

// newAuthGate builds the admin gate from configuration. An unset password or TOTP secret
// leaves the matching verifier nil, so logins report the admin as not configured.
func newAuthGate() (*gate.Gate, error) {
	manager, err := session.NewManager(session.Config{
		SigningKey: config.GetJWTSigningSecret(),
		Issuer:     config.ServiceJWTIssuer.GetString(),
		Audience:   config.ServiceJWTAudience.GetString(),
		TTL:        config.ServiceSessionTTL.GetDuration(),
	})
	if err != nil {
		return nil, err
	}

	var passwords gate.PasswordVerifier
	admin := password.AdminVerifier{
		Hash:  config.AdminPasswordHash.GetString(),
		Plain: config.AdminPassword.GetString(),
	}
	if admin.Configured() {
		if admin.UsesPlaintext() {
			slog.Warn("Admin password is configured in plaintext, set a bcrypt hash instead (see -hash-password)")
		}
		passwords = admin
	} else {
		slog.Warn("Admin password is not configured, logins are disabled")
	}

	var codes gate.CodeVerifier
	if secret := config.AdminTotpSecret.GetString(); secret != "" {
		if !oath.IsCanonicalSecret(secret) {
			slog.Warn("Admin TOTP secret is not canonical base32, it is normalized before use")
		}
		codes = totp.New(secret, gate.CodeLength, config.ServiceTotpInterval.GetUint64(), config.ServiceTotpSkew.GetUint8())
	} else {
		slog.Warn("Admin TOTP secret is not configured, logins are disabled")
	}

	return gate.New(passwords, codes, manager, manager), nil
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	provider, _, err := telemetry.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		_ = telemetry.Shutdown(provider)
	}()
	tracing.InitGlobalBusinessTracer(tracing.BusinessTracerConfig{
		TracerProvider: provider.GetTracerProvider(),
		ServiceName:    config.TelemetryServiceName.GetString(),
	})

	// Connect to database
	pool, err := pgxpool.New(ctx, config.GetDbURI())
	if err != nil {
		return fmt.Errorf("failed to connect to the postgres database: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to the postgres database: %w", err)
	}
	slog.Info("Successfully connected to the postgres database")

	// Connect to redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.GetRedisAddress(),
		Password: config.RedisPassword.GetString(),
		DB:       config.RedisDatabase.GetInt(),
	})
	defer func(rdb *redis.Client) {
		if err := rdb.Close(); err != nil {
			slog.Error("failed to close redis client", "error", err)
		}
	}(rdb)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	slog.Info("Successfully connected to redis")

	var healthMetrics *metrics.SystemHealthMetrics
	if provider.IsEnabled() && provider.GetConfig().MetricsEnabled {
		healthCheck := controllers.NewHealthCheckController(pool, rdb)
		healthMetrics, err = metrics.NewSystemHealthMetrics(metrics.SystemHealthMetricsConfig{
			Meter:               provider.GetMeter("promptsmith-api-system"),
			ServiceName:         provider.GetConfig().ServiceName,
			GetDependencyStatus: healthCheck.DependencyStatus,
		})
		if err != nil {
			slog.Warn("Failed to create system health metrics", "error", err)
		}
	}

	// Create service
	service := models.NewService(models.New(pool), healthMetrics)

	authGate, err := newAuthGate()
	if err != nil {
		return err
	}

	e := routes.NewEcho()
	r := routes.NewRouteServiceWithTelemetry(e, service, pool, rdb, authGate, provider, healthMetrics)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "address", config.GetServerAddress(), "version", Version)
		errCh <- routes.LoadRoutes(r)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
