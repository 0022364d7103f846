package mailer

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"legalai-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureSender struct {
	sent []*gomail.Message
	raw  bytes.Buffer
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, m...)
	for _, msg := range m {
		if _, err := msg.WriteTo(&c.raw); err != nil {
			return err
		}
	}
	return nil
}

func attachment(name, content string) Attachment {
	return Attachment{Name: name, Open: func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	}}
}

func TestSendDocument(t *testing.T) {
	sender := &captureSender{}
	svc := NewEmailServiceWithSender(sender, "noreply@legalai.test", "LegalAI", logger.NewNop())

	require.NoError(t, svc.SendDocument("client@example.com", "Advocate <Rao>", attachment("brief.pdf", "%PDF-1.4")))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"client@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Advocate <Rao> shared a document with you"}, msg.GetHeader("Subject"))

	raw := sender.raw.String()
	assert.Contains(t, raw, "brief.pdf")
	assert.Contains(t, raw, "Advocate &lt;Rao&gt;")
}

func TestSendDocumentFailure(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	svc := NewEmailServiceWithSender(sender, "noreply@legalai.test", "LegalAI", logger.NewNop())

	err := svc.SendDocument("client@example.com", "u", attachment("a.txt", "x"))
	assert.EqualError(t, err, "smtp down")
}
