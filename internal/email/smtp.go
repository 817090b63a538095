package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender delivers mail through gomail. Each call dials once; there is no retry.
type SMTPSender struct {
	config SMTPConfig
	dialer *gomail.Dialer
	now    func() time.Time
}

func NewSMTPSender(config SMTPConfig) *SMTPSender {
	return &SMTPSender{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		now:    time.Now,
	}
}

func (s *SMTPSender) Send(ctx context.Context, message Message) (Receipt, error) {
	if err := message.validate(); err != nil {
		return Receipt{}, err
	}
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	m := s.buildMessage(message)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return Receipt{}, fmt.Errorf("smtp send to %v: %w", message.To, err)
		}
		return newReceipt(message, s.now()), nil
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	}
}

func (s *SMTPSender) buildMessage(message Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.From, s.config.FromName)
	m.SetHeader("To", message.To...)
	m.SetHeader("Subject", message.Subject)
	if message.TextBody != "" {
		m.SetBody("text/plain", message.TextBody)
		if message.HTMLBody != "" {
			m.AddAlternative("text/html", message.HTMLBody)
		}
		return m
	}
	m.SetBody("text/html", message.HTMLBody)
	return m
}
