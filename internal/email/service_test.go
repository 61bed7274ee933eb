package email

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherhub/server/internal/config"
)

type fakeSender struct {
	batches [][]Message
	failed  []string
	err     error
}

func (s *fakeSender) Send(messages []Message) ([]string, error) {
	s.batches = append(s.batches, messages)
	return s.failed, s.err
}

func newTestService(t *testing.T, sender Sender, templates map[string]string) *Service {
	t.Helper()
	dir := t.TempDir()
	for name, body := range templates {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".txt"), []byte(body), 0o600))
	}

	cfg := config.EmailConfig{
		Enabled:      true,
		From:         "noreply@gatherhub.example",
		TemplatesDir: dir,
	}
	return NewService(cfg, sender, zerolog.Nop())
}

func TestSendToAll_SubstitutesLinks(t *testing.T) {
	sender := &fakeSender{}
	service := newTestService(t, sender, map[string]string{
		"magic_link": "Click here: {link}\n",
	})

	failed, err := service.SendToAll(
		[]string{"a@example.com", "b@example.com"},
		[]string{"https://x/1", "https://x/2"},
		"magic_link",
	)
	require.NoError(t, err)
	assert.Empty(t, failed)

	require.Len(t, sender.batches, 1)
	batch := sender.batches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "Click here: https://x/1\n", batch[0].Body)
	assert.Equal(t, "Click here: https://x/2\n", batch[1].Body)
	assert.Equal(t, "a@example.com", batch[0].To)
	assert.Equal(t, "[GatherHub] magic link", batch[0].Subject)
}

func TestSendToAll_LinkMismatchSendsWithoutSubstitution(t *testing.T) {
	sender := &fakeSender{}
	service := newTestService(t, sender, map[string]string{
		"magic_link": "Click here: {link}",
	})

	_, err := service.SendToAll(
		[]string{"a@example.com", "b@example.com"},
		[]string{"https://x/1"},
		"magic_link",
	)
	require.NoError(t, err)

	require.Len(t, sender.batches, 1)
	for _, msg := range sender.batches[0] {
		assert.Equal(t, "Click here: {link}", msg.Body, "placeholder stays when links do not pair")
	}
}

func TestSendToAll_MissingTemplate(t *testing.T) {
	sender := &fakeSender{}
	service := newTestService(t, sender, nil)

	_, err := service.SendToAll([]string{"a@example.com"}, nil, "nope")
	assert.ErrorIs(t, err, ErrNoTemplate)
	assert.Empty(t, sender.batches, "missing template must not send anything")
}

func TestSendToAll_TemplateNameCannotEscapeDir(t *testing.T) {
	sender := &fakeSender{}
	service := newTestService(t, sender, map[string]string{
		"safe": "body",
	})

	_, err := service.SendToAll([]string{"a@example.com"}, nil, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrNoTemplate)
}

func TestSendToAll_ReportsFailedRecipients(t *testing.T) {
	sender := &fakeSender{failed: []string{"bad@example.com"}}
	service := newTestService(t, sender, map[string]string{
		"announcement": "hello",
	})

	failed, err := service.SendToAll([]string{"a@example.com", "bad@example.com"}, nil, "announcement")
	require.NoError(t, err)
	assert.Equal(t, []string{"bad@example.com"}, failed)
}

func TestSendToAll_Disabled(t *testing.T) {
	sender := &fakeSender{}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "announcement.txt"), []byte("hello"), 0o600))

	cfg := config.EmailConfig{Enabled: false, TemplatesDir: dir}
	service := NewService(cfg, sender, zerolog.Nop())

	failed, err := service.SendToAll([]string{"a@example.com"}, nil, "announcement")
	require.NoError(t, err)
	assert.Empty(t, failed)
	assert.Empty(t, sender.batches, "disabled service must not send")
}

func TestSendLink(t *testing.T) {
	sender := &fakeSender{}
	service := newTestService(t, sender, map[string]string{
		"magic_link": "Go: {link}",
	})

	err := service.SendLink("a@example.com", "https://x/1", "magic_link")
	require.NoError(t, err)

	require.Len(t, sender.batches, 1)
	require.Len(t, sender.batches[0], 1)
	assert.Equal(t, "Go: https://x/1", sender.batches[0][0].Body)
}

func TestSendLink_FailureIsError(t *testing.T) {
	sender := &fakeSender{failed: []string{"a@example.com"}}
	service := newTestService(t, sender, map[string]string{
		"magic_link": "Go: {link}",
	})

	err := service.SendLink("a@example.com", "https://x/1", "magic_link")
	assert.Error(t, err)
}

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, validateAddress("a@example.com"))
	assert.Error(t, validateAddress("not-an-address"))
	assert.Error(t, validateAddress("a@example.com\r\nBcc: b@example.com"))
}
