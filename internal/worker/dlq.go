package worker

// dlq.go
// Emails that cannot be delivered are parked on dlq:{queue} with the reason,
// subject and recipients so the office can resend them by hand.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"kecdesk/internal/infra"
	"kecdesk/internal/notification"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DeadLetterPrefix = "dlq:"

// DeadReason says why an email job was given up on.
type DeadReason string

const (
	// ReasonUndecodable covers broken envelopes and payloads that are not a message.
	ReasonUndecodable  DeadReason = "undecodable"
	ReasonUnknownJob   DeadReason = "unknown_job_type"
	ReasonNoRecipients DeadReason = "no_recipients"
	// ReasonExhausted means SMTP kept failing for MaxEmailAttempts deliveries.
	ReasonExhausted     DeadReason = "attempts_exhausted"
	ReasonRequeueFailed DeadReason = "requeue_failed"
)

// DeadLetter is one parked email.
type DeadLetter struct {
	Queue    string          `json:"queue"`
	Reason   DeadReason      `json:"reason"`
	Detail   string          `json:"detail,omitempty"`
	Subject  string          `json:"subject,omitempty"`
	To       []string        `json:"to,omitempty"`
	Attempts int             `json:"attempts"`
	FailedAt string          `json:"failed_at"` // RFC 3339
	Payload  json.RawMessage `json:"payload"`
}

// classifyFailure maps a send error that will not be retried onto its reason.
func classifyFailure(err error) DeadReason {
	switch {
	case errors.Is(err, errNoRecipients), errors.Is(err, infra.ErrNoRecipients):
		return ReasonNoRecipients
	case errors.Is(err, errBadPayload):
		return ReasonUndecodable
	default:
		return ReasonExhausted
	}
}

func newDeadLetter(queue string, payload json.RawMessage, reason DeadReason, cause error, attempts int, at time.Time) DeadLetter {
	if len(payload) > 0 && !json.Valid(payload) {
		// kept as a string so the entry itself still marshals
		payload, _ = json.Marshal(string(payload))
	}
	dl := DeadLetter{
		Queue:    queue,
		Reason:   reason,
		Attempts: attempts,
		FailedAt: at.UTC().Format(time.RFC3339),
		Payload:  payload,
	}
	if cause != nil {
		dl.Detail = cause.Error()
	}
	var msg notification.Message
	if json.Unmarshal(payload, &msg) == nil {
		dl.Subject, dl.To = msg.Subject, msg.To
	}
	return dl
}

// bury pushes dl onto the queue's dead letter list. Failures are only logged;
// the job is lost at that point.
func bury(ctx context.Context, rdb queueClient, dl DeadLetter) {
	infra.EmailsDeadLettered.WithLabelValues(string(dl.Reason)).Inc()

	data, err := json.Marshal(dl)
	if err != nil {
		log.Error().Err(err).Str("queue", dl.Queue).Msg("dlq: failed to marshal entry")
		return
	}
	key := DeadLetterPrefix + dl.Queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Strs("to", dl.To).Str("subject", dl.Subject).Msg("dlq: push failed, email dropped")
		return
	}

	log.Warn().
		Str("reason", string(dl.Reason)).
		Str("detail", dl.Detail).
		Str("subject", dl.Subject).
		Strs("to", dl.To).
		Int("attempts", dl.Attempts).
		Msg("dlq: email parked")
}

// DeadLetters returns up to n parked emails, newest first.
func DeadLetters(ctx context.Context, rdb *redis.Client, queue string, n int64) ([]DeadLetter, error) {
	raw, err := rdb.LRange(ctx, DeadLetterPrefix+queue, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DeadLetter, 0, len(raw))
	for _, r := range raw {
		var dl DeadLetter
		if err := json.Unmarshal([]byte(r), &dl); err != nil {
			log.Warn().Err(err).Str("queue", queue).Msg("dlq: skipping unreadable entry")
			continue
		}
		out = append(out, dl)
	}
	return out, nil
}
