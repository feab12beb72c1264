package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kecdesk/internal/duedate"
	"kecdesk/internal/infra"
	"kecdesk/internal/model"
	"kecdesk/internal/notification"
	"kecdesk/internal/repository"

	"github.com/rs/zerolog/log"
)

// Notifier hands a rendered message to a mail transport.
type Notifier interface {
	Send(ctx context.Context, msg notification.Message) error
}

// NotificationResult summarises one daily run. Counts are bucket sizes, not
// messages sent; Actions lists what was sent, skipped or failed, in order.
type NotificationResult struct {
	Date              time.Time
	DueTodayPOs       int
	DueTodayInvoices  int
	OverduePOs        int
	OverdueInvoices   int
	FollowUpInquiries int
	Actions           []string
}

type NotificationService interface {
	// RunDailyNotifications partitions open orders and invoices against today
	// and sends reminders, escalations and inquiry follow-ups.
	//
	// Nothing records what was already sent: calling it twice for the same day
	// sends everything twice. The selection itself is deterministic for a
	// given today and data set.
	RunDailyNotifications(ctx context.Context, today time.Time) (*NotificationResult, error)
}

type notificationService struct {
	orders    repository.PurchaseOrderRepository
	invoices  repository.InvoiceRepository
	inquiries repository.InquiryRepository
	users     repository.UserRepository
	notifier  Notifier
}

func NewNotificationService(
	orders repository.PurchaseOrderRepository,
	invoices repository.InvoiceRepository,
	inquiries repository.InquiryRepository,
	users repository.UserRepository,
	notifier Notifier,
) NotificationService {
	return &notificationService{orders: orders, invoices: invoices, inquiries: inquiries, users: users, notifier: notifier}
}

func (s *notificationService) RunDailyNotifications(ctx context.Context, today time.Time) (*NotificationResult, error) {
	today = duedate.Day(today)

	pos, err := s.orders.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("load open purchase orders: %w", err)
	}
	invoices, err := s.invoices.ListUnpaid(ctx)
	if err != nil {
		return nil, fmt.Errorf("load unpaid invoices: %w", err)
	}
	inquiries, err := s.inquiries.ListFollowUps(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("load inquiry follow-ups: %w", err)
	}
	admins, err := s.users.ListActiveWithRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("load admin recipients: %w", err)
	}

	b := notification.Select(today, pos, invoices)
	followUps := notification.SelectFollowUps(today, inquiries)

	run := &run{ctx: ctx, notifier: s.notifier}
	for _, bucket := range [][]notification.Item{b.DueTodayPOs, b.DueTodayInvoices} {
		for _, item := range bucket {
			msg, ok, err := notification.Reminder(item)
			run.deliver("reminder", fmt.Sprintf("reminder for %s %s", item.Kind.Label(), item.Ref), msg, ok, err)
		}
	}

	adminRecipients := notification.Recipients(admins)
	escalate := func(kind notification.Kind, items []notification.Item) {
		if len(items) == 0 {
			return
		}
		msg, ok, err := notification.Escalation(kind, items, adminRecipients, today)
		what := fmt.Sprintf("escalation of %d overdue %ss (total %s)",
			len(items), strings.ToLower(kind.Label()), notification.Total(items).StringFixed(2))
		run.deliver("escalation", what, msg, ok, err)
	}
	escalate(notification.KindPurchaseOrder, b.OverduePOs)
	escalate(notification.KindInvoice, b.OverdueInvoices)

	for _, f := range followUps {
		msg, ok, err := notification.FollowUpReminder(f, today)
		run.deliver("follow_up", "follow-up for inquiry "+f.CreateID, msg, ok, err)
	}

	res := &NotificationResult{
		Date:              today,
		DueTodayPOs:       len(b.DueTodayPOs),
		DueTodayInvoices:  len(b.DueTodayInvoices),
		OverduePOs:        len(b.OverduePOs),
		OverdueInvoices:   len(b.OverdueInvoices),
		FollowUpInquiries: len(followUps),
		Actions:           run.actions,
	}
	log.Info().
		Str("date", today.Format("2006-01-02")).
		Int("due_today_pos", res.DueTodayPOs).
		Int("due_today_invoices", res.DueTodayInvoices).
		Int("overdue_pos", res.OverduePOs).
		Int("overdue_invoices", res.OverdueInvoices).
		Int("follow_ups", res.FollowUpInquiries).
		Int("actions", len(res.Actions)).
		Msg("daily notifications run")
	return res, nil
}

// run collects the outcome of each delivery. A failed send is recorded and
// the run moves on.
type run struct {
	ctx      context.Context
	notifier Notifier
	actions  []string
}

func (r *run) deliver(kind, what string, msg notification.Message, ok bool, renderErr error) {
	switch {
	case renderErr != nil:
		infra.NotificationFailures.WithLabelValues(kind).Inc()
		log.Error().Err(renderErr).Str("kind", kind).Msg("notification render failed")
		r.actions = append(r.actions, "failed "+what+": "+renderErr.Error())
	case !ok:
		r.actions = append(r.actions, "skipped "+what+": no recipients with email")
	default:
		if err := r.notifier.Send(r.ctx, msg); err != nil {
			infra.NotificationFailures.WithLabelValues(kind).Inc()
			log.Warn().Err(err).Str("kind", kind).Strs("to", msg.To).Msg("notification send failed")
			r.actions = append(r.actions, "failed "+what+": "+err.Error())
			return
		}
		infra.NotificationsSent.WithLabelValues(kind).Inc()
		r.actions = append(r.actions, "sent "+what+" to "+strings.Join(msg.To, ", "))
	}
}
