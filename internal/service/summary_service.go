package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"legalai-be/internal/dto"
	"legalai-be/internal/pkg/logger"
	"legalai-be/internal/repository/memory"
	"legalai-be/internal/websocket"
	"legalai-be/pkg/filestore"
	"legalai-be/pkg/summary"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

var ErrJobNotFound = errors.New("summary job not found")

type ISummaryService interface {
	Create(ctx context.Context, subject, fileName, contentType string, r io.Reader) (*summary.Snapshot, error)
	Get(ctx context.Context, subject, id string) (*summary.Snapshot, error)
	File(ctx context.Context, subject, id string) (*filestore.Handle, error)
	ReplaceFile(ctx context.Context, subject, id, fileName, contentType string, r io.Reader) (*summary.Snapshot, error)
	Retry(ctx context.Context, subject, id string) (*summary.Snapshot, error)
	Remove(ctx context.Context, subject, id string) error
}

type summaryService struct {
	files     *filestore.Store
	workspace *memory.WorkspaceRepository
	queue     message.Publisher
	topic     string
	pusher    FramePusher
	logger    logger.ILogger
}

func NewSummaryService(
	files *filestore.Store,
	workspace *memory.WorkspaceRepository,
	queue message.Publisher,
	topic string,
	pusher FramePusher,
	log logger.ILogger,
) ISummaryService {
	return &summaryService{
		files:     files,
		workspace: workspace,
		queue:     queue,
		topic:     topic,
		pusher:    pusherOrNop(pusher),
		logger:    log,
	}
}

// Create stores the upload, starts a job for it and queues the pipeline run.
func (s *summaryService) Create(ctx context.Context, subject, fileName, contentType string, r io.Reader) (*summary.Snapshot, error) {
	handle, err := s.files.Put(fileName, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	job := summary.NewJob(uuid.NewString(), subject, handle)
	job.OnChange(func(snap summary.Snapshot) {
		s.pusher.Send(context.Background(), snap.Owner, websocket.Frame{
			Type: websocket.FrameSummaryStage,
			Data: dto.SummaryStageFrame{JobID: snap.ID, Stage: snap.Stage, StageIndex: snap.StageIndex, Error: snap.Error},
		})
	})
	s.workspace.SaveJob(job)

	if err := job.Start(); err != nil {
		return nil, err
	}
	if err := s.enqueue(job); err != nil {
		return nil, err
	}

	s.logger.Info("SummaryService", "Summary job queued", map[string]interface{}{
		"job_id":  job.ID(),
		"subject": subject,
		"file":    handle.Info.Name,
		"size":    handle.Info.Size,
	})
	snap := job.Snapshot()
	return &snap, nil
}

// enqueue hands a Processing job to the consumer. If the queue refuses it the
// job is marked Failed and the caller returns that snapshot, so the user sees
// the retry action instead of a job that never leaves Processing.
func (s *summaryService) enqueue(job *summary.Job) error {
	err := s.publishJob(job.ID())
	if err == nil {
		return nil
	}
	s.logger.Error("SummaryService", "Failed to queue summary job", map[string]interface{}{
		"job_id": job.ID(),
		"error":  err.Error(),
	})
	if failErr := job.Fail(); failErr != nil {
		return errors.Join(err, failErr)
	}
	return nil
}

func (s *summaryService) publishJob(jobID string) error {
	payload, err := json.Marshal(dto.SummaryJobMessage{JobID: jobID})
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.queue.Publish(s.topic, msg); err != nil {
		return fmt.Errorf("queue summary job: %w", err)
	}
	return nil
}

// job hides other users' jobs behind ErrJobNotFound.
func (s *summaryService) job(subject, id string) (*summary.Job, error) {
	job, ok := s.workspace.Job(id)
	if !ok || job.Owner() != subject {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (s *summaryService) Get(ctx context.Context, subject, id string) (*summary.Snapshot, error) {
	job, err := s.job(subject, id)
	if err != nil {
		return nil, err
	}
	snap := job.Snapshot()
	return &snap, nil
}

func (s *summaryService) File(ctx context.Context, subject, id string) (*filestore.Handle, error) {
	job, err := s.job(subject, id)
	if err != nil {
		return nil, err
	}
	return job.File()
}

// ReplaceFile releases the previous file and runs the pipeline again on the new one.
func (s *summaryService) ReplaceFile(ctx context.Context, subject, id, fileName, contentType string, r io.Reader) (*summary.Snapshot, error) {
	job, err := s.job(subject, id)
	if err != nil {
		return nil, err
	}
	if job.Stage() == summary.StageProcessing {
		return nil, summary.ErrBusy
	}

	handle, err := s.files.Put(fileName, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if err := job.ReplaceFile(handle); err != nil {
		if errors.Is(err, summary.ErrBusy) || errors.Is(err, summary.ErrRemoved) {
			handle.Release()
			return nil, err
		}
		// Only the old handle failed to release; the job already holds the new file.
		s.logger.Warn("SummaryService", "Previous file not released", map[string]interface{}{"job_id": id, "error": err.Error()})
	}

	if err := job.Start(); err != nil {
		return nil, err
	}
	if err := s.enqueue(job); err != nil {
		return nil, err
	}
	snap := job.Snapshot()
	return &snap, nil
}

func (s *summaryService) Retry(ctx context.Context, subject, id string) (*summary.Snapshot, error) {
	job, err := s.job(subject, id)
	if err != nil {
		return nil, err
	}
	if err := job.Retry(); err != nil {
		return nil, err
	}
	if err := s.enqueue(job); err != nil {
		return nil, err
	}
	snap := job.Snapshot()
	return &snap, nil
}

// Remove cancels any in-flight call, releases the file and forgets the job.
func (s *summaryService) Remove(ctx context.Context, subject, id string) error {
	if _, err := s.job(subject, id); err != nil {
		return err
	}
	s.workspace.DeleteJob(id)
	s.logger.Info("SummaryService", "Summary job removed", map[string]interface{}{"job_id": id, "subject": subject})
	return nil
}
