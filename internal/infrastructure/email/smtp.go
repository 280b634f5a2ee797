package email

import (
	"gopkg.in/gomail.v2"

	"github.com/pawhaven/pawhaven/internal/shared/config"
)

// SMTPSender delivers mail through the configured SMTP relay.
type SMTPSender struct {
	config *config.EmailConfig
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg *config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		config: cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPSender) Send(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	return s.dialer.DialAndSend(m)
}
