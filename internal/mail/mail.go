// Package mail sends account verification messages over SMTP.
package mail

import (
	"context"
	"fmt"
	"html"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	appConfig "github.com/festy23/ctf_platform/internal/config"
)

// Dispatcher delivers verification mail.
type Dispatcher interface {
	SendVerification(ctx context.Context, to, name, confirmURL string) error
}

// Sender is the subset of gomail.Dialer used by the SMTP dispatcher.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpDispatcher struct {
	sender Sender
	from   string
	logger *zap.SugaredLogger
}

// New returns an SMTP dispatcher, or a logging dispatcher when SMTP is not configured.
func New(cfg appConfig.MailConfig, logger *zap.SugaredLogger) Dispatcher {
	if !cfg.Enabled() {
		return &logDispatcher{logger: logger}
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.SSL = cfg.Port == 465
	return NewWithSender(dialer, cfg.From, logger)
}

// NewWithSender builds a dispatcher around any Sender.
func NewWithSender(sender Sender, from string, logger *zap.SugaredLogger) Dispatcher {
	return &smtpDispatcher{sender: sender, from: from, logger: logger}
}

func (d *smtpDispatcher) SendVerification(ctx context.Context, to, name, confirmURL string) error {
	msg := BuildVerification(d.from, to, name, confirmURL)

	done := make(chan error, 1)
	go func() {
		done <- d.sender.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send verification mail: %w", err)
		}
		d.logger.Infow("verification mail sent", "to", to)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send verification mail: %w", ctx.Err())
	}
}

// BuildVerification composes the verification message.
func BuildVerification(from, to, name, confirmURL string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Confirm your CTF account")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nOpen the link below within the hour to activate your account:\n%s\n", name, confirmURL))
	m.AddAlternative("text/html", fmt.Sprintf(
		`<p>Hi %s,</p><p>Click <a href="%s">here</a> within the hour to activate your account.</p>`,
		html.EscapeString(name), html.EscapeString(confirmURL)))
	return m
}

type logDispatcher struct {
	logger *zap.SugaredLogger
}

func (d *logDispatcher) SendVerification(_ context.Context, to, _, confirmURL string) error {
	d.logger.Warnw("mail delivery disabled, confirmation link logged instead", "to", to, "url", confirmURL)
	return nil
}

// SendAsync delivers in the background after the caller's transaction has
// committed. Failures are logged and never reach the caller.
func SendAsync(d Dispatcher, logger *zap.SugaredLogger, timeout time.Duration, to, name, confirmURL string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := d.SendVerification(ctx, to, name, confirmURL); err != nil {
			logger.Errorw("verification mail failed", "to", to, "error", err)
		}
	}()
}
