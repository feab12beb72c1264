// Command notify runs the daily notification job once and exits. It is the
// entrypoint for an external scheduler (cron, Kubernetes CronJob).
//
// Usage: notify [-date YYYY-MM-DD]
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"kecdesk/internal/config"
	"kecdesk/internal/duedate"
	"kecdesk/internal/dto"
	"kecdesk/internal/infra"
	"kecdesk/internal/repository"
	"kecdesk/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	dateFlag := flag.String("date", "", "run for this day instead of today (YYYY-MM-DD)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	loc, _ := cfg.Location()

	today := duedate.Today(time.Now(), loc)
	if *dateFlag != "" {
		d, err := time.Parse(dto.DateLayout, *dateFlag)
		if err != nil {
			log.Fatal().Str("date", *dateFlag).Msg("date must be YYYY-MM-DD")
		}
		today = d
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	// One-shot runs always send inline; there is no worker to drain a queue.
	svc := service.NewNotificationService(
		repository.NewPurchaseOrderRepository(db),
		repository.NewInvoiceRepository(db),
		repository.NewInquiryRepository(db),
		repository.NewUserRepository(db),
		infra.NewMailer(cfg),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	res, err := svc.RunDailyNotifications(ctx, today)
	if err != nil {
		log.Fatal().Err(err).Msg("daily notifications failed")
	}
	for _, a := range res.Actions {
		log.Info().Msg(a)
	}
	log.Info().
		Str("date", res.Date.Format(dto.DateLayout)).
		Int("due_today_pos", res.DueTodayPOs).
		Int("due_today_invoices", res.DueTodayInvoices).
		Int("overdue_pos", res.OverduePOs).
		Int("overdue_invoices", res.OverdueInvoices).
		Int("follow_up_inquiries", res.FollowUpInquiries).
		Msg("daily notifications done")
}
