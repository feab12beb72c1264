package worker

// daily_cron.go
// In-process trigger for the daily notification run, for deployments without
// an external cron hitting /automation/send-emails. A redis lock keyed by the
// date keeps replicas from running it more than once per day.

import (
	"context"
	"time"

	"kecdesk/internal/duedate"
	"kecdesk/internal/service"

	"github.com/rs/zerolog/log"
)

const dailyTickInterval = time.Minute

// DailyRunner is the operation the trigger fires.
type DailyRunner interface {
	RunDailyNotifications(ctx context.Context, today time.Time) (*service.NotificationResult, error)
}

type DailyCronConfig struct {
	Runner   DailyRunner
	Locker   service.Locker // optional
	Location *time.Location
	Hour     int
}

type dailyCron struct {
	cfg     DailyCronConfig
	lastRun time.Time
}

// StartDailyCron ticks every minute and runs the notifications once per local
// day, at or after cfg.Hour. It stops with ctx.
func StartDailyCron(ctx context.Context, cfg DailyCronConfig) {
	d := &dailyCron{cfg: cfg}
	go func() {
		ticker := time.NewTicker(dailyTickInterval)
		defer ticker.Stop()

		log.Info().Int("hour", cfg.Hour).Msg("daily_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("daily_cron: shutting down")
				return
			case now := <-ticker.C:
				d.tick(ctx, now)
			}
		}
	}()
}

// tick reports whether a run was started.
func (d *dailyCron) tick(ctx context.Context, now time.Time) bool {
	loc := d.cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	today := duedate.Today(now, loc)
	if now.In(loc).Hour() < d.cfg.Hour || d.lastRun.Equal(today) {
		return false
	}

	if d.cfg.Locker != nil {
		// held until expiry so other replicas skip today
		if _, err := d.cfg.Locker.Obtain(ctx, "notify:daily:"+today.Format("2006-01-02"), 23*time.Hour); err != nil {
			log.Debug().Err(err).Msg("daily_cron: another instance owns today's run")
			d.lastRun = today
			return false
		}
	}
	d.lastRun = today

	res, err := d.cfg.Runner.RunDailyNotifications(ctx, today)
	if err != nil {
		log.Error().Err(err).Msg("daily_cron: run failed")
		return true
	}
	log.Info().Int("actions", len(res.Actions)).Msg("daily_cron: run complete")
	return true
}
