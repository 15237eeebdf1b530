package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPSender delivers messages over SMTP with STARTTLS and PLAIN auth.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// NewSMTPSender creates a sender for the given relay.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		Timeout:  30 * time.Second,
	}
}

// Send dials the relay and delivers msg with its attachments.
func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	m := mail.NewMsg()
	if err := m.From(s.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	for _, path := range msg.Attachments {
		m.AttachFile(path)
	}

	client, err := mail.NewClient(s.Host,
		mail.WithPort(s.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.Username),
		mail.WithPassword(s.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(s.Timeout),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Notifier wraps a Sender with exponential backoff retry.
type Notifier struct {
	Sender  Sender
	Retries int
	Backoff time.Duration
	Logger  *zap.Logger
}

// NewNotifier creates a Notifier. Backoff is the first retry delay and doubles each attempt.
func NewNotifier(sender Sender, retries int, backoff time.Duration, logger *zap.Logger) *Notifier {
	if backoff <= 0 {
		backoff = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{Sender: sender, Retries: retries, Backoff: backoff, Logger: logger}
}

// SendWithRetry sends msg, retrying up to n.Retries times.
func (n *Notifier) SendWithRetry(ctx context.Context, msg *Message) error {
	var lastErr error
	for i := 0; i <= n.Retries; i++ {
		err := n.Sender.Send(ctx, msg)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == n.Retries {
			break
		}
		backoff := n.Backoff * time.Duration(1<<uint(i))
		n.Logger.Warn("send failed, retrying",
			zap.String("subject", msg.Subject),
			zap.Int("attempt", i+1),
			zap.Int("attempts", n.Retries+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", n.Retries+1, lastErr)
}
