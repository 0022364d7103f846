package service

import (
	"bytes"
	"context"
	"fmt"

	"legalai-be/internal/dto"
	"legalai-be/internal/pkg/logger"
	"legalai-be/internal/repository/memory"
	"legalai-be/internal/websocket"
	"legalai-be/pkg/draft"
	"legalai-be/pkg/draft/export"
	"legalai-be/pkg/events"
)

type IDraftService interface {
	Get(ctx context.Context, subject string) *dto.DraftResponse
	Submit(ctx context.Context, subject string, req *dto.CreateDraftRequest) (*draft.Snapshot, error)
	Reset(ctx context.Context, subject string) *draft.Snapshot
	ExportPDF(ctx context.Context, subject string) ([]byte, error)
	ExportDOCX(ctx context.Context, subject string) ([]byte, error)
}

type draftService struct {
	generator draft.Generator
	workspace *memory.WorkspaceRepository
	pusher    FramePusher
	publisher events.Publisher
	logger    logger.ILogger
}

func NewDraftService(
	generator draft.Generator,
	workspace *memory.WorkspaceRepository,
	pusher FramePusher,
	publisher events.Publisher,
	log logger.ILogger,
) IDraftService {
	return &draftService{
		generator: generator,
		workspace: workspace,
		pusher:    pusherOrNop(pusher),
		publisher: publisher,
		logger:    log,
	}
}

func (s *draftService) workflow(subject string) *draft.Workflow {
	return s.workspace.DraftWorkflow(subject, func() *draft.Workflow {
		w := draft.NewWorkflow(s.generator)
		w.OnChange(func(snap draft.Snapshot) {
			s.pusher.Send(context.Background(), subject, websocket.Frame{
				Type: websocket.FrameDraftState,
				Data: dto.DraftStateFrame{State: string(snap.State), Error: snap.Error},
			})
		})
		return w
	})
}

func templateOptions() []dto.TemplateOption {
	kinds := draft.Kinds()
	out := make([]dto.TemplateOption, len(kinds))
	for i, k := range kinds {
		out[i] = dto.TemplateOption{Template: string(k), Subtypes: draft.Subtypes(k)}
	}
	return out
}

func (s *draftService) Get(ctx context.Context, subject string) *dto.DraftResponse {
	return &dto.DraftResponse{
		Snapshot:  s.workflow(subject).Snapshot(),
		Templates: templateOptions(),
	}
}

func (s *draftService) Submit(ctx context.Context, subject string, req *dto.CreateDraftRequest) (*draft.Snapshot, error) {
	snap, err := s.workflow(subject).Submit(ctx, draft.Request{
		Prompt:   req.Prompt,
		Template: draft.TemplateKind(req.Template),
		Subtype:  req.Subtype,
	})
	if err != nil {
		s.logger.Warn("DraftService", "Draft not generated", map[string]interface{}{
			"subject":  subject,
			"template": req.Template,
			"error":    err.Error(),
		})
		return &snap, err
	}

	doc := snap.Document
	evt := events.DraftGenerated(subject, string(doc.Request.Template), doc.Request.Subtype, len(doc.Markdown))
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("DraftService", "Failed to publish draft event", map[string]interface{}{"error": err.Error()})
	}

	s.logger.Info("DraftService", "Draft generated", map[string]interface{}{
		"subject":  subject,
		"template": doc.Request.Template,
		"subtype":  doc.Request.Subtype,
		"size":     len(doc.Markdown),
	})
	return &snap, nil
}

func (s *draftService) Reset(ctx context.Context, subject string) *draft.Snapshot {
	snap := s.workflow(subject).Reset()
	return &snap
}

func documentTitle(req draft.Request) string {
	if req.Subtype == "" {
		return string(req.Template)
	}
	return fmt.Sprintf("%s - %s", req.Template, req.Subtype)
}

// ExportPDF returns draft.ErrNoDocument until a generation has succeeded.
func (s *draftService) ExportPDF(ctx context.Context, subject string) ([]byte, error) {
	doc, err := s.workflow(subject).Document()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	opts := export.PDFOptions{Title: documentTitle(doc.Request), CreatedAt: doc.GeneratedAt}
	if err := export.PDF(&buf, doc.Markdown, opts); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *draftService) ExportDOCX(ctx context.Context, subject string) ([]byte, error) {
	doc, err := s.workflow(subject).Document()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.DOCX(&buf, doc.Markdown); err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}
	return buf.Bytes(), nil
}
