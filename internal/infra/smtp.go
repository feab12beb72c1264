package infra

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"kecdesk/internal/config"
	"kecdesk/internal/notification"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog/log"
)

// ErrNoRecipients is returned for a message with an empty To list.
var ErrNoRecipients = errors.New("mailer: message has no recipients")

// Mailer delivers notification messages over SMTP behind a circuit breaker.
type Mailer struct {
	host    string
	addr    string
	from    string
	auth    smtp.Auth
	breaker *Breaker
	send    func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &Mailer{
		host:    cfg.SMTPHost,
		addr:    fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from:    from,
		auth:    auth,
		breaker: NewBreaker(DefaultBreakerConfig("smtp")),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Configured reports whether an SMTP host is set.
func (m *Mailer) Configured() bool { return m.host != "" }

// Send delivers msg. With no SMTP host configured the message is logged and
// dropped, which keeps local development quiet.
func (m *Mailer) Send(ctx context.Context, msg notification.Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.Configured() {
		log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("mailer: SMTP not configured, message dropped")
		return nil
	}

	e := email.NewEmail()
	e.From = m.from
	e.To = msg.To
	e.Subject = msg.Subject
	e.Text = []byte(msg.Text)
	if msg.HTML != "" {
		e.HTML = []byte(msg.HTML)
	}

	err := m.breaker.Do(func() error { return m.send(e, m.addr, m.auth) })
	if err != nil {
		return fmt.Errorf("mailer: send %q: %w", msg.Subject, err)
	}
	return nil
}

// BreakerState exposes the SMTP breaker for health reporting.
func (m *Mailer) BreakerState() BreakerState { return m.breaker.State() }
