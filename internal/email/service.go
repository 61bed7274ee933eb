package email

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gatherhub/server/internal/config"
)

// ErrNoTemplate reports a request for a template file that does not exist.
var ErrNoTemplate = errors.New("no such template")

const linkPlaceholder = "{link}"

// Service sends templated batch email. Templates are plain-text files in the
// configured directory; the {link} placeholder is substituted per recipient
// when a parallel links list is supplied.
type Service struct {
	cfg    config.EmailConfig
	sender Sender
	logger zerolog.Logger
}

func NewService(cfg config.EmailConfig, sender Sender, logger zerolog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		sender: sender,
		logger: logger.With().Str("component", "email").Logger(),
	}
}

// SendToAll renders templateName for every recipient and submits the batch.
// links, when present, must be parallel to recipients; a length mismatch
// sends the template without substitution. Returns the recipients whose
// message failed.
func (s *Service) SendToAll(recipients, links []string, templateName string) ([]string, error) {
	body, err := s.loadTemplate(templateName)
	if err != nil {
		return nil, err
	}

	if !s.cfg.Enabled {
		s.logger.Info().Int("recipients", len(recipients)).Str("template", templateName).
			Msg("email disabled, skipping send")
		return nil, nil
	}

	substitute := len(links) == len(recipients) && len(recipients) > 0
	if len(links) > 0 && !substitute {
		s.logger.Warn().Int("recipients", len(recipients)).Int("links", len(links)).
			Msg("links do not pair with recipients, sending without substitution")
	}

	messages := make([]Message, len(recipients))
	for i, recipient := range recipients {
		content := body
		if substitute {
			content = strings.ReplaceAll(body, linkPlaceholder, links[i])
		}
		messages[i] = Message{
			To:      recipient,
			Subject: s.subjectFor(templateName),
			Body:    content,
		}
	}

	failed, err := s.sender.Send(messages)
	if err != nil {
		return nil, err
	}
	if len(failed) > 0 {
		s.logger.Warn().Strs("failed", failed).Str("template", templateName).Msg("some messages failed")
	}
	return failed, nil
}

// SendLink delivers a single templated message carrying one link.
func (s *Service) SendLink(recipient, link, templateName string) error {
	failed, err := s.SendToAll([]string{recipient}, []string{link}, templateName)
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to send to %s", recipient)
	}
	return nil
}

func (s *Service) loadTemplate(name string) (string, error) {
	// Base strips any path components so requests cannot escape the
	// templates directory.
	filename := filepath.Base(name) + ".txt"
	content, err := os.ReadFile(filepath.Join(s.cfg.TemplatesDir, filename))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoTemplate, name)
	}
	return string(content), nil
}

func (s *Service) subjectFor(templateName string) string {
	return "[GatherHub] " + strings.ReplaceAll(filepath.Base(templateName), "_", " ")
}
