package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/smtp"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailSender delivers email through the Gmail API on behalf of the
// configured account.
type GmailSender struct {
	svc  *gmail.Service
	from string
}

// NewGmailSender builds a sender from client options (OAuth token
// source or service-account credentials with domain delegation).
func NewGmailSender(ctx context.Context, from string, opts ...option.ClientOption) (*GmailSender, error) {
	if from == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &GmailSender{svc: svc, from: from}, nil
}

// Send delivers one HTML email.
func (s *GmailSender) Send(ctx context.Context, to, subject, html string) error {
	raw := base64.URLEncoding.EncodeToString(buildMessage(s.from, to, subject, html))
	_, err := s.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send mail via gmail: %w", err)
	}
	return nil
}

// SMTPSender delivers email over authenticated SMTP. Used as the
// fallback transport when the Gmail API is not configured.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPSender builds a sender for host:port with PLAIN auth.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: smtp.PlainAuth("", username, password, host),
		from: from,
	}
}

// Send delivers one HTML email. net/smtp has no context support; the
// call honors cancellation only between dial attempts.
func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildMessage(s.from, to, subject, html)
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail via smtp: %w", err)
	}
	return nil
}

// FallbackSender tries the primary transport and falls back to the
// secondary on failure. Either may be nil.
type FallbackSender struct {
	primary   Sender
	secondary Sender
}

// Sender is the transport contract shared by the Gmail and SMTP senders.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// NewFallbackSender combines two transports.
func NewFallbackSender(primary, secondary Sender) *FallbackSender {
	return &FallbackSender{primary: primary, secondary: secondary}
}

// Send tries the primary transport first, then the secondary.
func (s *FallbackSender) Send(ctx context.Context, to, subject, html string) error {
	if s.primary != nil {
		err := s.primary.Send(ctx, to, subject, html)
		if err == nil {
			return nil
		}
		if s.secondary == nil {
			return err
		}
		log.Printf("mailer: primary transport failed, falling back: %v", err)
	}
	if s.secondary == nil {
		return fmt.Errorf("no mail transport configured")
	}
	return s.secondary.Send(ctx, to, subject, html)
}

// buildMessage assembles a minimal RFC 2822 HTML message.
func buildMessage(from, to, subject, html string) []byte {
	headers := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n",
		from, to, subject,
	)
	return []byte(headers + html)
}
