package service

import (
	"context"
	"encoding/json"
	"errors"

	"legalai-be/internal/dto"
	"legalai-be/internal/pkg/logger"
	"legalai-be/internal/repository/memory"
	"legalai-be/pkg/events"
	"legalai-be/pkg/summary"

	"github.com/ThreeDotsLabs/watermill/message"
)

// pipelineWorkers bounds how many summary jobs talk to the ML service at once.
const pipelineWorkers = 4

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	workspace  *memory.WorkspaceRepository
	pipeline   *summary.Pipeline
	publisher  events.Publisher
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	workspace *memory.WorkspaceRepository,
	pipeline *summary.Pipeline,
	publisher events.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		workspace:  workspace,
		pipeline:   pipeline,
		publisher:  publisher,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	for i := 0; i < pipelineWorkers; i++ {
		go func() {
			for msg := range messages {
				cs.processMessage(ctx, msg)
			}
		}()
	}
	return nil
}

// processMessage always acks: a failed run is recorded on the job and retried by the user.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.SummaryJobMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal summary job", map[string]interface{}{"error": err.Error()})
		return
	}

	job, ok := cs.workspace.Job(payload.JobID)
	if !ok {
		cs.logger.Warn("Consumer", "Summary job gone before processing", map[string]interface{}{"job_id": payload.JobID})
		return
	}

	cs.logger.Info("Consumer", "Processing summary job", map[string]interface{}{"job_id": job.ID()})

	err := cs.pipeline.Run(ctx, job)
	switch {
	case err == nil:
		snap := job.Snapshot()
		cs.publish(ctx, events.SummaryCompleted(job.Owner(), job.ID(), snap.FileID))
		cs.logger.Info("Consumer", "Summary completed", map[string]interface{}{"job_id": job.ID(), "file_id": snap.FileID})
	case errors.Is(err, summary.ErrSuperseded), errors.Is(err, summary.ErrRemoved), errors.Is(err, summary.ErrNotProcessing), errors.Is(err, summary.ErrBusy):
		cs.logger.Info("Consumer", "Summary result discarded", map[string]interface{}{"job_id": job.ID(), "reason": err.Error()})
	default:
		cs.publish(ctx, events.SummaryFailed(job.Owner(), job.ID(), err.Error()))
		cs.logger.Error("Consumer", "Summary failed", map[string]interface{}{"job_id": job.ID(), "error": err.Error()})
	}
}

func (cs *consumerService) publish(ctx context.Context, evt events.Event) {
	if err := cs.publisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("Consumer", "Failed to publish event", map[string]interface{}{"type": evt.EventType(), "error": err.Error()})
	}
}
