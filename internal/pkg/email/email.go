// Package email sends transactional mail over plain SMTP. The service
// is optional: a nil *Service disables all sending.
package email

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Config holds the SMTP settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Service sends emails through an SMTP relay
type Service struct {
	config Config
	logger zerolog.Logger
}

// NewService creates a new email service. Returns nil when no host is
// configured so callers can skip sending entirely.
func NewService(config Config, logger zerolog.Logger) *Service {
	if config.Host == "" {
		return nil
	}
	return &Service{config: config, logger: logger}
}

// SendInvitation notifies a user by email that they were invited to a
// community.
func (s *Service) SendInvitation(to, communityName string) error {
	subject := fmt.Sprintf("Invitation to join %s", communityName)
	body := fmt.Sprintf(
		"You have been invited to join the community %q.\r\n\r\nOpen the app to accept or decline the invitation.\r\n",
		communityName,
	)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.config.From, to, subject, body,
	)

	if err := smtp.SendMail(addr, auth, s.config.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}

	s.logger.Debug().
		Str("to", to).
		Str("subject", subject).
		Msg("Email sent")

	return nil
}
