package service

import (
	"context"

	"legalai-be/internal/pkg/logger"
	"legalai-be/pkg/events"
	pktNats "legalai-be/pkg/nats"
)

const auditDurable = "audit"

// EventSubscriber is implemented by the NATS subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error
}

// AuditService writes every domain event to the audit log.
type AuditService struct {
	subscriber EventSubscriber
	logger     logger.ILogger
}

func NewAuditService(sub EventSubscriber, auditLog logger.ILogger) *AuditService {
	return &AuditService{subscriber: sub, logger: auditLog}
}

func (s *AuditService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, pktNats.SubjectPrefix+">", auditDurable, s.handleEvent); err != nil {
		return err
	}
	s.logger.Info("AuditService", "Audit trail listening", map[string]interface{}{"subject": pktNats.SubjectPrefix + ">"})
	return nil
}

func (s *AuditService) handleEvent(_ context.Context, event events.Event) error {
	details := make(map[string]interface{}, len(event.Payload())+1)
	for k, v := range event.Payload() {
		details[k] = v
	}
	details["occurred_at"] = event.Timestamp()
	s.logger.Info("AUDIT", event.EventType(), details)
	return nil
}
