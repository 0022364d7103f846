package mailer

import (
	"fmt"
	"html"
	"io"

	"legalai-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

// Attachment is read lazily while the message is written.
type Attachment struct {
	Name string
	Open func() (io.ReadCloser, error)
}

type IEmailService interface {
	SendDocument(toEmail, senderName string, doc Attachment) error
}

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	sender      Sender
	senderEmail string
	fromName    string
	logger      logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderEmail, fromName string, log logger.ILogger) IEmailService {
	return NewEmailServiceWithSender(gomail.NewDialer(host, port, username, password), senderEmail, fromName, log)
}

func NewEmailServiceWithSender(sender Sender, senderEmail, fromName string, log logger.ILogger) IEmailService {
	return &emailService{
		sender:      sender,
		senderEmail: senderEmail,
		fromName:    fromName,
		logger:      log,
	}
}

func (s *emailService) SendDocument(toEmail, senderName string, doc Attachment) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.fromName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("%s shared a document with you", senderName))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>A document was shared with you on LegalAI</h2>
			<p><strong>%s</strong> sent you <em>%s</em>. It is attached to this email.</p>
		</div>
	`, html.EscapeString(senderName), html.EscapeString(doc.Name))
	m.SetBody("text/html", body)

	m.Attach(doc.Name, gomail.SetCopyFunc(func(w io.Writer) error {
		rc, err := doc.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		_, err = io.Copy(w, rc)
		return err
	}))

	if err := s.sender.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "Failed to send document", map[string]interface{}{
			"to":    toEmail,
			"file":  doc.Name,
			"error": err.Error(),
		})
		return err
	}

	s.logger.Info("MAILER", "Document sent", map[string]interface{}{"to": toEmail, "file": doc.Name})
	return nil
}
