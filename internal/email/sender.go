package email

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/gatherhub/server/internal/config"
)

// ErrUnavailable reports that the mail session itself could not be
// established, as opposed to individual messages failing.
var ErrUnavailable = errors.New("mail service unavailable")

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a batch of messages. failed lists the recipients whose
// message could not be submitted; err is reserved for session-level
// failures that prevented the batch from being attempted at all.
type Sender interface {
	Send(messages []Message) (failed []string, err error)
}

type SMTPSender struct {
	cfg config.EmailConfig
}

func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send opens a single SMTP session for the whole batch and submits each
// message in turn. A message failure resets the session and moves on to the
// next recipient.
func (s *SMTPSender) Send(messages []Message) ([]string, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsCfg := &tls.Config{
			ServerName: s.cfg.SMTPHost,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsCfg); err != nil {
			return nil, fmt.Errorf("%w: starttls: %v", ErrUnavailable, err)
		}
	}

	if s.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return nil, fmt.Errorf("%w: auth: %v", ErrUnavailable, err)
		}
	}

	var failed []string
	for _, msg := range messages {
		if err := s.submit(client, msg); err != nil {
			failed = append(failed, msg.To)
			// Reset clears the half-finished transaction so the
			// next message starts clean.
			_ = client.Reset()
		}
	}

	_ = client.Quit()
	return failed, nil
}

func (s *SMTPSender) submit(client *smtp.Client, msg Message) error {
	if err := validateAddress(msg.To); err != nil {
		return err
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(msg.To); err != nil {
		return err
	}
	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write([]byte(s.render(msg))); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

func (s *SMTPSender) render(msg Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return b.String()
}

func validateAddress(address string) error {
	if strings.ContainsAny(address, "\r\n") {
		return fmt.Errorf("address contains line breaks")
	}
	if _, err := mail.ParseAddress(address); err != nil {
		return fmt.Errorf("invalid address %q", address)
	}
	return nil
}
