package mail

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/circle-space/core/internal/config"
	"go.uber.org/zap"
)

// Kind selects the OTP email template.
type Kind string

const (
	KindConfirmEmail  Kind = "confirm-email"
	KindResetPassword Kind = "reset-password"
)

// Sender delivers OTP emails over SMTP.
type Sender struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

func New(cfg config.MailConfig, logger *zap.Logger) *Sender {
	return &Sender{cfg: cfg, logger: logger}
}

// SendOTP dispatches an OTP email in the background. Delivery is
// best-effort: failures are logged and never reach the caller, so OTP
// issuance succeeds even when mail is down.
func (s *Sender) SendOTP(to, code string, kind Kind) {
	go func() {
		if err := s.send(to, code, kind); err != nil {
			s.logger.Warn("otp mail delivery failed",
				zap.String("to", to),
				zap.String("kind", string(kind)),
				zap.Error(err))
		}
	}()
}

func (s *Sender) send(to, code string, kind Kind) error {
	if !s.cfg.Enable {
		s.logger.Info("mail disabled, otp not delivered",
			zap.String("to", to), zap.String("kind", string(kind)))
		return nil
	}

	subject, html := renderOTP(code, kind)

	port := s.cfg.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, port)

	from := s.cfg.From
	if from == "" {
		from = s.cfg.User
	}

	var body bytes.Buffer
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString(fmt.Sprintf("From: %s\r\n", from))
	body.WriteString(fmt.Sprintf("To: %s\r\n", to))
	body.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	body.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	body.WriteString("\r\n")
	body.WriteString(html)

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}
	return smtp.SendMail(addr, auth, from, []string{to}, body.Bytes())
}

func renderOTP(code string, kind Kind) (subject, html string) {
	switch kind {
	case KindResetPassword:
		subject = "Reset your password"
	default:
		subject = "Confirm your email"
	}
	html = strings.Join([]string{
		"<div style=\"font-family:sans-serif\">",
		"<p>Your verification code:</p>",
		fmt.Sprintf("<h2 style=\"letter-spacing:4px\">%s</h2>", code),
		"<p>The code expires in 2 minutes.</p>",
		"</div>",
	}, "\n")
	return subject, html
}
