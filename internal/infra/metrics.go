package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors, exposed on /metrics when METRICS_ENABLED.
var (
	SequenceAllocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kecdesk_sequence_allocations_total",
		Help: "Identifiers successfully allocated, by document type.",
	}, []string{"doc_type"})

	SequenceConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kecdesk_sequence_conflicts_total",
		Help: "Allocation attempts rolled back on a uniqueness violation.",
	}, []string{"doc_type"})

	SequenceContentionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kecdesk_sequence_contention_failures_total",
		Help: "Allocations abandoned after exhausting retries.",
	}, []string{"doc_type"})

	SequenceAnomalies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kecdesk_sequence_anomalies_total",
		Help: "Stored identifiers that did not parse during a watermark scan.",
	}, []string{"doc_type"})

	SequenceWidened = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kecdesk_sequence_widened_total",
		Help: "Identifiers whose sequence outgrew the 3-digit field.",
	}, []string{"doc_type"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kecdesk_notifications_sent_total",
		Help: "Notification emails handed to the mail transport, by kind.",
	}, []string{"kind"})

	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kecdesk_notification_failures_total",
		Help: "Notification emails that could not be handed over, by kind.",
	}, []string{"kind"})

	EmailsDeadLettered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kecdesk_emails_dead_lettered_total",
		Help: "Queued emails given up on, by reason.",
	}, []string{"reason"})

	MailBreakerOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kecdesk_mail_breaker_open",
		Help: "1 while the SMTP circuit breaker is open.",
	})
)
