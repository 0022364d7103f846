package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"legalai-be/pkg/llm"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// FailureMessage is what the user sees when the generation call fails.
const FailureMessage = "An error occurred while generating the document. Please try again."

var (
	ErrInFlight         = errors.New("a draft is already being generated")
	ErrGenerationFailed = errors.New("document generation failed")
	ErrSuperseded       = errors.New("draft was reset before the result arrived")
	ErrNoDocument       = errors.New("no generated document")
)

// Generator is the slice of llm.LLMProvider the workflow needs.
type Generator interface {
	Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error)
}

type Document struct {
	Markdown    string    `json:"markdown"`
	Request     Request   `json:"request"`
	GeneratedAt time.Time `json:"generated_at"`
}

type Snapshot struct {
	State    State     `json:"state"`
	Request  Request   `json:"request"`
	Document *Document `json:"document,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Workflow owns one user's draft lifecycle. At most one generation call is in
// flight; Reset cancels it and any result that arrives afterwards is dropped.
type Workflow struct {
	gen      Generator
	mu       sync.Mutex
	state    State
	req      Request
	doc      *Document
	errMsg   string
	epoch    uint64
	cancel   context.CancelFunc
	onChange func(Snapshot)
	now      func() time.Time
}

func NewWorkflow(gen Generator) *Workflow {
	return &Workflow{gen: gen, state: StateIdle, now: time.Now}
}

// OnChange registers a callback invoked after every state transition.
func (w *Workflow) OnChange(fn func(Snapshot)) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Workflow) snapshotLocked() Snapshot {
	s := Snapshot{State: w.state, Request: w.req, Error: w.errMsg}
	if w.doc != nil {
		d := *w.doc
		s.Document = &d
	}
	return s
}

// Document returns the last generated document.
func (w *Workflow) Document() (Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.doc == nil {
		return Document{}, ErrNoDocument
	}
	return *w.doc, nil
}

// Submit validates req and, when valid, calls the generator exactly once.
func (w *Workflow) Submit(ctx context.Context, req Request) (Snapshot, error) {
	req = req.Normalize()

	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return Snapshot{}, ErrInFlight
	}
	w.state = StateValidating
	if err := req.Validate(); err != nil {
		w.state = StateIdle
		w.errMsg = err.Error()
		snap := w.snapshotLocked()
		fn := w.onChange
		w.mu.Unlock()
		notify(fn, snap)
		return snap, err
	}

	w.state = StateSubmitting
	w.req = req
	w.errMsg = ""
	w.epoch++
	epoch := w.epoch
	callCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	snap := w.snapshotLocked()
	fn := w.onChange
	w.mu.Unlock()
	notify(fn, snap)

	text, err := w.gen.Generate(callCtx, ComposeInstruction(req))
	cancel()
	if err == nil {
		text = StripFence(text)
		if strings.TrimSpace(text) == "" {
			err = llm.ErrEmptyResponse
		}
	}

	w.mu.Lock()
	if w.epoch != epoch {
		w.mu.Unlock()
		return Snapshot{}, ErrSuperseded
	}
	w.cancel = nil
	if err != nil {
		// Failed is transient; the form is usable again right away.
		w.state = StateFailed
		w.errMsg = FailureMessage
		fn = w.onChange
		failed := w.snapshotLocked()
		w.state = StateIdle
		snap = w.snapshotLocked()
		w.mu.Unlock()
		notify(fn, failed)
		notify(fn, snap)
		return snap, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	w.state = StateSucceeded
	w.doc = &Document{Markdown: text, Request: req, GeneratedAt: w.now()}
	snap = w.snapshotLocked()
	fn = w.onChange
	w.mu.Unlock()
	notify(fn, snap)
	return snap, nil
}

// Reset cancels any in-flight call and clears the workspace.
func (w *Workflow) Reset() Snapshot {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.epoch++
	w.state = StateIdle
	w.req = Request{}
	w.doc = nil
	w.errMsg = ""
	snap := w.snapshotLocked()
	fn := w.onChange
	w.mu.Unlock()
	notify(fn, snap)
	return snap
}

func notify(fn func(Snapshot), s Snapshot) {
	if fn != nil {
		fn(s)
	}
}
