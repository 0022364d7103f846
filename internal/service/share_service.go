package service

import (
	"context"
	"errors"
	"io"

	"legalai-be/internal/dto"
	"legalai-be/internal/pkg/logger"
	"legalai-be/internal/pkg/mailer"
	"legalai-be/internal/pkg/serverutils"
	"legalai-be/pkg/events"
	"legalai-be/pkg/filestore"

	"github.com/gofiber/fiber/v2"
)

const (
	ShareMissingInputMessage = "Please select a file and enter a recipient email address."
	ShareFailedMessage       = "Failed to send the file. Please try again."
)

var ErrShareMissingInput = errors.New("file and recipient are required")

// Upload is a file taken from a multipart form.
type Upload struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type IShareService interface {
	Share(ctx context.Context, subject string, req *dto.ShareRequest, file *Upload) (*dto.ShareResponse, error)
}

type shareService struct {
	files     *filestore.Store
	mailer    mailer.IEmailService
	publisher events.Publisher
	logger    logger.ILogger
}

func NewShareService(files *filestore.Store, m mailer.IEmailService, publisher events.Publisher, log logger.ILogger) IShareService {
	return &shareService{files: files, mailer: m, publisher: publisher, logger: log}
}

// Share mails the file to the recipient. The stored copy is released whether or not the send worked.
func (s *shareService) Share(ctx context.Context, subject string, req *dto.ShareRequest, file *Upload) (*dto.ShareResponse, error) {
	if file == nil || req.RecipientEmail == "" {
		return nil, serverutils.NewHTTPError(fiber.StatusBadRequest, ShareMissingInputMessage, ErrShareMissingInput)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, serverutils.NewHTTPError(fiber.StatusBadRequest, ShareMissingInputMessage, err)
	}
	handle, err := s.files.Put(file.Name, file.ContentType, src)
	src.Close()
	if err != nil {
		return nil, serverutils.NewHTTPError(fiber.StatusInternalServerError, ShareFailedMessage, err)
	}
	defer handle.Release()

	attachment := mailer.Attachment{
		Name: handle.Info.Name,
		Open: func() (io.ReadCloser, error) { return handle.Open() },
	}
	if err := s.mailer.SendDocument(req.RecipientEmail, subject, attachment); err != nil {
		return nil, serverutils.NewHTTPError(fiber.StatusBadGateway, ShareFailedMessage, err)
	}

	evt := events.DocumentShared(subject, req.RecipientEmail, handle.Info.Name, handle.Info.Size)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("ShareService", "Failed to publish share event", map[string]interface{}{"error": err.Error()})
	}

	return &dto.ShareResponse{Recipient: req.RecipientEmail, File: handle.Info}, nil
}
