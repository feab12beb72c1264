package worker

// email_worker.go
// Sends queued notification emails through the SMTP mailer.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kecdesk/internal/infra"
	"kecdesk/internal/notification"

	"github.com/rs/zerolog/log"
)

// errBadPayload marks jobs that can never succeed.
var (
	errBadPayload   = errors.New("email_worker: invalid payload")
	errNoRecipients = fmt.Errorf("%w: no recipients", errBadPayload)
)

// Sender is the SMTP side of the worker; *infra.Mailer satisfies it.
type Sender interface {
	Send(ctx context.Context, msg notification.Message) error
}

type EmailWorker struct {
	sender      Sender
	maxAttempts int
	baseBackoff time.Duration
}

func NewEmailWorker(sender Sender) *EmailWorker {
	return &EmailWorker{sender: sender, maxAttempts: MaxEmailAttempts, baseBackoff: 10 * time.Second}
}

// Process decodes and sends one queued message.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var msg notification.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	if len(msg.To) == 0 {
		return errNoRecipients
	}

	if err := w.sender.Send(ctx, msg); err != nil {
		log.Error().Err(err).Strs("to", msg.To).Msg("email_worker: failed to send email")
		return err
	}
	log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("email_worker: sent")
	return nil
}

// retryPolicy decides whether a failed job is retried and after how long.
// Bad payloads go straight to the DLQ; an open breaker waits out its cool-down.
func (w *EmailWorker) retryPolicy(err error, attempts int) (time.Duration, bool) {
	if errors.Is(err, errBadPayload) || errors.Is(err, infra.ErrNoRecipients) {
		return 0, false
	}
	if attempts >= w.maxAttempts {
		return 0, false
	}
	if errors.Is(err, infra.ErrBreakerOpen) {
		return time.Minute, true
	}
	// 10s, 20s, 40s, ...
	return w.baseBackoff << (attempts - 1), true
}
