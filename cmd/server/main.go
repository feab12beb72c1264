package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kecdesk/internal/config"
	"kecdesk/internal/infra"
	"kecdesk/internal/middleware"
	"kecdesk/internal/repository"
	"kecdesk/internal/router"
	"kecdesk/internal/service"
	"kecdesk/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty console in dev, JSON in prod
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	loc, _ := cfg.Location() // validated by Load

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	// Redis carries the email queue and the allocation / daily-run locks. It is
	// required for queued delivery; otherwise the API runs without it.
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		if cfg.EmailDelivery == "queue" {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		log.Warn().Err(err).Msg("redis unavailable, running without distributed locks")
		rdb = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)
	var locker service.Locker
	if rdb != nil {
		locker = infra.NewRedisLocker(rdb)
	}

	var (
		notifier service.Notifier = mailer
		pool     *worker.WorkerPool
	)
	if cfg.EmailDelivery == "queue" {
		notifier = worker.NewDispatcher(rdb)
		pool = worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, worker.NewEmailWorker(mailer))
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	contactRepo := repository.NewContactRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	inquiryRepo := repository.NewInquiryRepository(db)
	seqRepo := repository.NewNumberSequenceRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	cal := service.NewCalendar(loc)
	seqSvc := service.NewSequenceService(seqRepo, locker, service.SequenceOptions{
		Prefix:      cfg.DocumentPrefix,
		MaxAttempts: cfg.SequenceMaxAttempts,
		LockTTL:     cfg.SequenceLockTTL(),
	})
	notifySvc := service.NewNotificationService(poRepo, invoiceRepo, inquiryRepo, userRepo, notifier)

	if cfg.NotifyScheduleEnabled {
		worker.StartDailyCron(ctx, worker.DailyCronConfig{
			Runner:   notifySvc,
			Locker:   locker,
			Location: loc,
			Hour:     cfg.NotifyHour,
		})
	}

	apiLimiter := middleware.NewRateLimiter(1000, time.Minute)
	cronLimiter := middleware.NewRateLimiter(10, time.Minute)
	apiLimiter.StartPurge(ctx)
	cronLimiter.StartPurge(ctx)

	r := router.New(cfg, router.Deps{
		DB:             db,
		RDB:            rdb,
		Mail:           mailer,
		Companies:      service.NewCompanyService(companyRepo),
		Contacts:       service.NewContactService(contactRepo, companyRepo),
		PurchaseOrders: service.NewPurchaseOrderService(poRepo, userRepo, contactRepo, cal, cfg.DueSoonDays),
		Invoices: service.NewInvoiceService(invoiceRepo, poRepo, seqSvc, cal, service.InvoiceOptions{
			DefaultPaymentTermsDays: cfg.DefaultPaymentTermsDays,
			DueSoonDays:             cfg.DueSoonDays,
		}),
		Inquiries:     service.NewInquiryService(inquiryRepo, userRepo, seqSvc, cal),
		Notifications: notifySvc,
		Calendar:      cal,
		APILimiter:    apiLimiter,
		CronLimiter:   cronLimiter,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("delivery", cfg.EmailDelivery).Msgf("kecdesk listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	pool.Wait()
	closeRedis(rdb)
	log.Info().Msg("server exited")
}

func closeRedis(rdb *redis.Client) {
	if rdb != nil {
		_ = rdb.Close()
	}
}
