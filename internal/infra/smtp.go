package infra

import (
	"fmt"
	"net/smtp"

	"jewelshop/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends plain-text notifications over SMTP. Sends go through a circuit
// breaker so a dead SMTP relay fails fast instead of tying up workers.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	breaker  *CircuitBreaker
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		breaker:  NewCircuitBreaker(DefaultCBConfig()),
	}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool { return m != nil && m.host != "" }

// BreakerState exposes the breaker state for the health endpoint.
func (m *Mailer) BreakerState() CBState {
	if m == nil {
		return CBClosed
	}
	return m.breaker.State()
}

// Send delivers a plain-text message.
func (m *Mailer) Send(to []string, subject, body string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = to
	e.Subject = subject
	e.Text = []byte(body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return m.breaker.Execute(func() error {
		return e.Send(m.addr, auth)
	})
}
