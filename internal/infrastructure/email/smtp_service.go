package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"library-lending-backend/internal/config"
	"library-lending-backend/pkg/logger"
)

// Mailer gửi một email. Implementation: SMTP, log (dev), ResilientMailer bọc ngoài.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpMailer struct {
	addr string
	from string
	auth smtp.Auth
	send sendFunc
}

func NewSMTPMailer(cfg config.EmailConfig) Mailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}
	return &smtpMailer{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		from: cfg.From,
		auth: auth,
		send: smtp.SendMail,
	}
}

func (s *smtpMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.send(s.addr, s.auth, s.from, []string{msg.To}, buildMIME(s.from, msg)); err != nil {
		logger.Info("Failed to send email", map[string]interface{}{
			"error":     err.Error(),
			"to":        msg.To,
			"smtp_addr": s.addr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMIME(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)
	return []byte(b.String())
}

// logMailer dùng cho local dev (EMAIL_DRIVER=log): không gửi, chỉ log
type logMailer struct{}

func NewLogMailer() Mailer {
	return logMailer{}
}

func (logMailer) Send(ctx context.Context, msg Message) error {
	logger.Info("Email (log driver)", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
		"bytes":   len(msg.HTMLBody),
	})
	return nil
}

// NewMailer chọn driver theo config và bọc circuit breaker + rate limit
func NewMailer(emailCfg config.EmailConfig, notifyCfg config.NotificationConfig) *ResilientMailer {
	var base Mailer
	switch emailCfg.Driver {
	case config.EmailDriverLog:
		base = NewLogMailer()
	default:
		base = NewSMTPMailer(emailCfg)
	}
	return NewResilientMailer(base, notifyCfg)
}
