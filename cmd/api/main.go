package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fawziabuhussin/task-manager-api/internal/config"
	"github.com/fawziabuhussin/task-manager-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/fawziabuhussin/task-manager-api/internal/infrastructure/jwt"
	"github.com/fawziabuhussin/task-manager-api/internal/infrastructure/memory"
	"github.com/fawziabuhussin/task-manager-api/internal/infrastructure/smtp"
	"github.com/fawziabuhussin/task-manager-api/internal/infrastructure/sns"
	"github.com/fawziabuhussin/task-manager-api/internal/pkg/hash"
	"github.com/fawziabuhussin/task-manager-api/internal/pkg/logger"
	transporthttp "github.com/fawziabuhussin/task-manager-api/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.AppName, cfg.LogLevel)
	if envErr != nil {
		log.Info("No .env file found, reading from environment")
	}

	if cfg.IsProduction() && cfg.JWTSecret == config.DefaultJWTSecret {
		log.Fatal("JWT_SECRET must be set in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := buildDeps(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("could not initialise dependencies")
	}

	router := transporthttp.NewRouter(ctx, cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.AppPort, "env": cfg.AppEnv}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("forced shutdown")
	}
	log.Info("server stopped")
}

func buildDeps(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*transporthttp.Deps, error) {
	jwtProvider, err := jwtinfra.NewProvider(cfg.JWTSecret, cfg.SessionTTL, nil)
	if err != nil {
		return nil, err
	}
	deps := &transporthttp.Deps{
		JWTProvider: jwtProvider,
		Hasher:      hash.New(cfg.BcryptCost),
		Logger:      log,
	}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		deps.AccountRepo = store.Accounts()
		deps.VerificationRepo = store.Verifications()
		deps.TaskRepo = store.Tasks()
		deps.OutboxRepo = store.Outbox()
	case config.StoreDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		// Creates tables that don't exist yet.
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables, log)
		deps.AccountRepo = dynamo.NewAccountRepo(client, cfg.DynamoTables.Accounts)
		deps.VerificationRepo = dynamo.NewVerificationRepo(client, cfg.DynamoTables.VerificationCodes)
		deps.TaskRepo = dynamo.NewTaskRepo(client, cfg.DynamoTables.Tasks)
		deps.OutboxRepo = dynamo.NewOutboxRepo(client, cfg.DynamoTables.OutboxEmails)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.MailDriver {
	case config.MailOutbox:
		// Router falls back to the outbox when Mailer is nil.
	case config.MailSMTP:
		deps.Mailer = smtp.NewMailer(cfg)
	case config.MailSNS:
		publisher, err := sns.NewPublisher(cfg)
		if err != nil {
			return nil, err
		}
		deps.Mailer = publisher
	default:
		return nil, fmt.Errorf("unknown MAIL_DRIVER %q", cfg.MailDriver)
	}
	log.WithFields(logrus.Fields{"store": cfg.StoreDriver, "mail": cfg.MailDriver}).Info("dependencies ready")
	return deps, nil
}
