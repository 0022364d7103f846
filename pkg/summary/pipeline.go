package summary

import (
	"context"
	"errors"
	"fmt"
)

// Pipeline runs upload then summarise for a job that is Processing.
type Pipeline struct {
	backend Backend
}

func NewPipeline(backend Backend) *Pipeline {
	return &Pipeline{backend: backend}
}

// Run returns the pipeline error after recording it on the job as Failed.
// ErrSuperseded means the job was removed or restarted mid-flight and
// nothing was recorded.
func (p *Pipeline) Run(ctx context.Context, job *Job) error {
	a, cancel, err := job.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	fileID, summary, runErr := p.run(a)
	if err := job.finish(a, fileID, summary, runErr); err != nil {
		return err
	}
	return runErr
}

func (p *Pipeline) run(a attempt) (string, string, error) {
	if a.file == nil {
		return "", "", errors.New("job has no file")
	}
	f, err := a.file.Open()
	if err != nil {
		return "", "", fmt.Errorf("open file: %w", err)
	}
	fileID, err := p.backend.Upload(a.ctx, a.file.Info.Name, f)
	f.Close()
	if err != nil {
		return "", "", fmt.Errorf("upload: %w", err)
	}

	summary, err := p.backend.Summarize(a.ctx, fileID)
	if err != nil {
		return fileID, "", fmt.Errorf("summarize: %w", err)
	}
	return fileID, summary, nil
}
