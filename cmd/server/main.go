package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	cardhandler "campuscard/internal/card/handler"
	"campuscard/internal/card/fields"
	cardmetrics "campuscard/internal/card/metrics"
	cardservice "campuscard/internal/card/service"
	credentialstore "campuscard/internal/card/store/credential"
	templatestore "campuscard/internal/card/store/template"
	httpapi "campuscard/internal/http"
	"campuscard/internal/platform/config"
	"campuscard/internal/platform/httpserver"
	"campuscard/internal/platform/logger"
	platformredis "campuscard/internal/platform/redis"
	"campuscard/internal/school"
	subjectstore "campuscard/internal/subject/store"
	"campuscard/internal/verification"
	verifyhandler "campuscard/internal/verification/handler"
	verifymetrics "campuscard/internal/verification/metrics"
	"campuscard/pkg/platform/audit"
	auditpostgres "campuscard/pkg/platform/audit/store/postgres"
	auditworker "campuscard/pkg/platform/audit/worker"
	"campuscard/pkg/platform/tx"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	images := fields.NewImageNormalizer(cfg.PublicBaseURL)
	resolver := fields.NewResolver(images)

	var (
		subjects interface {
			cardservice.SubjectStore
			verification.SubjectStore
		}
		templates interface {
			cardservice.TemplateStore
			verification.TemplateStore
		}
		credentials interface {
			cardservice.CredentialStore
			verification.CredentialStore
		}
		schoolProvider school.Provider
		auditStore     audit.Store
		txRunner       tx.Runner = tx.NoopRunner{}
		db             *sql.DB
	)

	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("ping database", "error", err)
			os.Exit(1)
		}
		subjects = subjectstore.NewPostgres(db)
		templates = templatestore.NewPostgres(db)
		credentials = credentialstore.NewPostgres(db)
		schoolProvider = school.NewPostgres(db)
		auditStore = auditpostgres.New(db)
		txRunner = tx.SQLRunner{DB: db}
	} else {
		log.Warn("no CARD_DATABASE_URL set, using in-memory stores")
		subjects = subjectstore.NewInMemory()
		templates = templatestore.NewInMemory()
		credentials = credentialstore.NewInMemory()
		schoolProvider = school.NewMemory(nil)
		auditStore = audit.NewMemoryStore()
	}

	if redisClient, err := platformredis.New(cfg.RedisURL); err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	} else if redisClient != nil {
		schoolProvider = school.NewCached(schoolProvider, redisClient)
		defer redisClient.Close()
	}

	auditPublisher := audit.NewPublisher(auditStore)

	cardSvc := cardservice.New(
		subjects, templates, credentials, schoolProvider, resolver,
		cfg.FrontendBaseURL,
		cardservice.WithAudit(auditPublisher),
		cardservice.WithMetrics(cardmetrics.New()),
		cardservice.WithTxRunner(txRunner),
	)
	verifySvc := verification.New(
		subjects, credentials, templates, images,
		verification.WithAudit(auditPublisher),
		verification.WithMetrics(verifymetrics.New()),
	)

	router := httpapi.NewRouter(
		cardhandler.New(cardSvc, log),
		verifyhandler.New(verifySvc, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.KafkaBrokers) > 0 && db != nil {
		worker, err := auditworker.New(db, cfg.KafkaBrokers, log)
		if err != nil {
			log.Error("create audit worker", "error", err)
			os.Exit(1)
		}
		if err := worker.EnsureTopic(ctx); err != nil {
			log.Error("ensure audit topic", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit worker stopped", "error", err)
			}
		}()
	}

	log.Info("starting campuscard", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if db != nil {
		_ = db.Close()
	}
}
