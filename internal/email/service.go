package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/mail"
	"net/smtp"

	"github.com/redmonkez12/favorite-movies-api/internal/config"
	"github.com/redmonkez12/favorite-movies-api/internal/logging"
	"github.com/redmonkez12/favorite-movies-api/templates"
)

const passwordResetSubject = "Reset your password"

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service delivers mail over SMTP. Without an SMTP host it only logs what
// it would have sent, which keeps local development usable.
type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	from         *mail.Address
	logger       *logging.Logger

	tmpl     *template.Template
	sendMail sendMailFunc
}

func NewService(cfg config.EmailConfig, logger *logging.Logger) (*Service, error) {
	from, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", cfg.From, err)
	}

	tmpl, err := template.ParseFS(templates.EmailFS, "email/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}

	return &Service{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUser:     cfg.SMTPUser,
		smtpPassword: cfg.SMTPPassword,
		from:         from,
		logger:       logger,
		tmpl:         tmpl,
		sendMail:     smtp.SendMail,
	}, nil
}

// SendPasswordReset mails resetURL to toEmail.
// This method is designed to be called in a goroutine
func (s *Service) SendPasswordReset(ctx context.Context, toEmail, resetURL string) error {
	body, err := s.render("password_reset.html", map[string]string{
		"ResetLink": resetURL,
		"ExpiresIn": "1 hour",
	})
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	if s.smtpHost == "" {
		s.logger.Info("SMTP not configured, password reset email not sent", "email", toEmail, "reset_url", resetURL)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.send(toEmail, passwordResetSubject, body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info("password reset email sent", "email", toEmail)
	return nil
}

func (s *Service) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Service) send(to, subject, body string) error {
	var auth smtp.Auth
	if s.smtpUser != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.from.String(), to, mime.QEncoding.Encode("utf-8", subject), body,
	))

	addr := net.JoinHostPort(s.smtpHost, s.smtpPort)
	return s.sendMail(addr, auth, s.from.Address, []string{to}, msg)
}
