// Package summary runs the upload-then-summarise pipeline for one file.
package summary

import (
	"context"
	"errors"
	"sync"
	"time"

	"legalai-be/pkg/filestore"
)

type Stage int

const (
	StageIdle Stage = iota
	StageProcessing
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageProcessing:
		return "processing"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	}
	return "unknown"
}

// FailureMessage is shown next to the retry action.
const FailureMessage = "Failed to summarise the document. Please try again."

var (
	ErrNotRetryable  = errors.New("only a failed job can be retried")
	ErrNotProcessing = errors.New("job is not processing")
	ErrBusy          = errors.New("job is processing")
	ErrRemoved       = errors.New("job was removed")
	ErrSuperseded    = errors.New("job changed before the result arrived")
)

type Snapshot struct {
	ID         string         `json:"id"`
	Owner      string         `json:"owner"`
	Stage      string         `json:"stage"`
	StageIndex int            `json:"stage_index"`
	File       filestore.Info `json:"file"`
	FileID     string         `json:"file_id,omitempty"`
	Summary    string         `json:"summary,omitempty"`
	Error      string         `json:"error,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type Job struct {
	id    string
	owner string

	mu        sync.Mutex
	stage     Stage
	file      *filestore.Handle
	fileID    string
	summary   string
	errMsg    string
	epoch     uint64
	cancel    context.CancelFunc
	removed   bool
	updatedAt time.Time
	onChange  func(Snapshot)
}

func NewJob(id, owner string, file *filestore.Handle) *Job {
	return &Job{id: id, owner: owner, file: file, stage: StageIdle, updatedAt: time.Now()}
}

func (j *Job) ID() string    { return j.id }
func (j *Job) Owner() string { return j.owner }

func (j *Job) OnChange(fn func(Snapshot)) {
	j.mu.Lock()
	j.onChange = fn
	j.mu.Unlock()
}

func (j *Job) Stage() Stage {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stage
}

func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.snapshotLocked()
}

func (j *Job) snapshotLocked() Snapshot {
	s := Snapshot{
		ID:         j.id,
		Owner:      j.owner,
		Stage:      j.stage.String(),
		StageIndex: int(j.stage),
		FileID:     j.fileID,
		Summary:    j.summary,
		Error:      j.errMsg,
		UpdatedAt:  j.updatedAt,
	}
	if j.file != nil {
		s.File = j.file.Info
	}
	return s
}

// File returns the live preview handle.
func (j *Job) File() (*filestore.Handle, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.removed {
		return nil, ErrRemoved
	}
	if j.file == nil || j.file.Released() {
		return nil, filestore.ErrReleased
	}
	return j.file, nil
}

// transition applies fn under the lock and notifies after releasing it.
func (j *Job) transition(fn func() error) error {
	j.mu.Lock()
	if err := fn(); err != nil {
		j.mu.Unlock()
		return err
	}
	j.updatedAt = time.Now()
	snap := j.snapshotLocked()
	notify := j.onChange
	j.mu.Unlock()
	if notify != nil {
		notify(snap)
	}
	return nil
}

// Start moves an idle job to Processing.
func (j *Job) Start() error {
	return j.transition(func() error {
		if j.removed {
			return ErrRemoved
		}
		if j.stage != StageIdle {
			return ErrBusy
		}
		j.stage = StageProcessing
		return nil
	})
}

// Retry moves a failed job back to Processing.
func (j *Job) Retry() error {
	return j.transition(func() error {
		if j.removed {
			return ErrRemoved
		}
		if j.stage != StageFailed {
			return ErrNotRetryable
		}
		j.stage = StageProcessing
		j.errMsg = ""
		return nil
	})
}

// Fail marks a Processing job with no run in flight as Failed, for when the
// run could not be scheduled at all. The job can then be retried.
func (j *Job) Fail() error {
	return j.transition(func() error {
		if j.removed {
			return ErrRemoved
		}
		if j.stage != StageProcessing {
			return ErrNotProcessing
		}
		if j.cancel != nil {
			return ErrBusy
		}
		j.stage = StageFailed
		j.errMsg = FailureMessage
		return nil
	})
}

// ReplaceFile swaps the source file, releasing the previous handle, and
// returns the job to Idle.
func (j *Job) ReplaceFile(h *filestore.Handle) error {
	var previous *filestore.Handle
	err := j.transition(func() error {
		if j.removed {
			return ErrRemoved
		}
		if j.stage == StageProcessing {
			return ErrBusy
		}
		previous = j.file
		j.file = h
		j.stage = StageIdle
		j.fileID, j.summary, j.errMsg = "", "", ""
		return nil
	})
	if err != nil {
		return err
	}
	if previous != nil {
		return previous.Release()
	}
	return nil
}

// Remove cancels any in-flight call and releases the file. Results that
// arrive afterwards are dropped.
func (j *Job) Remove() error {
	j.mu.Lock()
	if j.removed {
		j.mu.Unlock()
		return nil
	}
	j.removed = true
	j.epoch++
	if j.cancel != nil {
		j.cancel()
		j.cancel = nil
	}
	file := j.file
	j.mu.Unlock()
	if file != nil {
		return file.Release()
	}
	return nil
}

type attempt struct {
	ctx   context.Context
	epoch uint64
	file  *filestore.Handle
}

func (j *Job) begin(ctx context.Context) (attempt, context.CancelFunc, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.removed {
		return attempt{}, nil, ErrRemoved
	}
	if j.stage != StageProcessing {
		return attempt{}, nil, ErrNotProcessing
	}
	if j.cancel != nil {
		return attempt{}, nil, ErrBusy
	}
	j.epoch++
	callCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	return attempt{ctx: callCtx, epoch: j.epoch, file: j.file}, cancel, nil
}

func (j *Job) finish(a attempt, fileID, summary string, cause error) error {
	return j.transition(func() error {
		if j.epoch != a.epoch || j.removed {
			return ErrSuperseded
		}
		j.cancel = nil
		if fileID != "" {
			j.fileID = fileID
		}
		if cause != nil {
			j.stage = StageFailed
			j.errMsg = FailureMessage
			return nil
		}
		j.stage = StageDone
		j.summary = summary
		return nil
	})
}
