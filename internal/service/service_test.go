package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"legalai-be/internal/dto"
	"legalai-be/internal/pkg/logger"
	"legalai-be/internal/pkg/mailer"
	"legalai-be/internal/pkg/serverutils"
	"legalai-be/internal/repository/memory"
	"legalai-be/internal/routes"
	"legalai-be/internal/websocket"
	"legalai-be/pkg/draft"
	"legalai-be/pkg/events"
	"legalai-be/pkg/filestore"
	"legalai-be/pkg/guard"
	"legalai-be/pkg/llm"
	pktNats "legalai-be/pkg/nats"
	"legalai-be/pkg/navigation"
	"legalai-be/pkg/role"
	"legalai-be/pkg/summary"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type genFunc func(ctx context.Context, prompt string) (string, error)

func (f genFunc) Generate(ctx context.Context, prompt string, _ ...llm.Option) (string, error) {
	return f(ctx, prompt)
}

type recordingPusher struct {
	mu     sync.Mutex
	frames []websocket.Frame
}

func (p *recordingPusher) Send(_ context.Context, _ string, frame websocket.Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, frame)
}

func (p *recordingPusher) snapshot() []websocket.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]websocket.Frame(nil), p.frames...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func newWorkspace() *memory.WorkspaceRepository {
	return memory.NewWorkspaceRepository(time.Hour, 0)
}

func TestRoleServiceSetPublishesChange(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	store := role.NewStore(memory.NewRoleStorage(), logger.NewNop())
	svc := NewRoleService(store, pub, logger.NewNop())

	assert.Equal(t, &dto.RoleResponse{Role: "User", LandingPath: "/summarisation"}, svc.Get(ctx, "u1"))

	resp, err := svc.Set(ctx, "u1", &dto.UpdateRoleRequest{Role: "lawyer"})
	require.NoError(t, err)
	assert.Equal(t, "Lawyer", resp.Role)
	assert.Equal(t, "/advocate-diary", resp.LandingPath)

	require.Equal(t, []string{events.TypeRoleChanged}, pub.types())
	assert.Equal(t, "User", pub.events[0].Payload()["from"])
	assert.Equal(t, "Lawyer", pub.events[0].Payload()["to"])

	_, err = svc.Set(ctx, "u1", &dto.UpdateRoleRequest{Role: "Admin"})
	assert.ErrorIs(t, err, role.ErrInvalidRole)
	assert.Len(t, pub.types(), 1)
}

type failingStorage struct{}

func (failingStorage) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (failingStorage) Set(context.Context, string, string) error       { return errors.New("down") }

func TestRoleServiceStorageFailure(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewRoleService(role.NewStore(failingStorage{}, logger.NewNop()), pub, logger.NewNop())

	_, err := svc.Set(context.Background(), "u1", &dto.UpdateRoleRequest{Role: "Judge"})
	assert.ErrorIs(t, err, ErrRoleUnavailable)
	assert.Empty(t, pub.types())
}

func TestNavigationServiceResolve(t *testing.T) {
	ctx := context.Background()
	store := role.NewStore(memory.NewRoleStorage(), logger.NewNop())
	svc := NewNavigationService(navigation.NewFilter(store), routes.Table(), store)

	anon, err := svc.Resolve(ctx, "/draft", guard.Session{})
	require.NoError(t, err)
	assert.Equal(t, "redirect_login", anon.Decision)
	assert.Equal(t, "/login", anon.Redirect)

	session := guard.Session{Subject: "u1", Token: "tok"}
	allowed, err := svc.Resolve(ctx, "/draft", session)
	require.NoError(t, err)
	assert.Equal(t, "allow", allowed.Decision)
	assert.Empty(t, allowed.Redirect)

	_, err = store.Set(ctx, "u1", role.Judge)
	require.NoError(t, err)
	denied, err := svc.Resolve(ctx, "/draft", session)
	require.NoError(t, err)
	assert.Equal(t, "redirect_forbidden", denied.Decision)
	assert.Equal(t, "/forbidden", denied.Redirect)

	slashed, err := svc.Resolve(ctx, "/draft/", session)
	require.NoError(t, err)
	assert.Equal(t, "redirect_forbidden", slashed.Decision)

	public, err := svc.Resolve(ctx, "/login", guard.Session{})
	require.NoError(t, err)
	assert.Equal(t, "allow", public.Decision)

	_, err = svc.Resolve(ctx, "/nowhere", session)
	assert.ErrorIs(t, err, guard.ErrUndeclaredRoute)
}

func TestNavigationServiceMenuFollowsRole(t *testing.T) {
	ctx := context.Background()
	store := role.NewStore(memory.NewRoleStorage(), logger.NewNop())
	svc := NewNavigationService(navigation.NewFilter(store), routes.Table(), store)

	menu := svc.Menu(ctx, "u1")
	assert.Equal(t, "User", menu.Role)
	assert.Equal(t, navigation.VisibleItems(role.User), menu.Items)

	_, err := store.Set(ctx, "u1", role.Judge)
	require.NoError(t, err)

	menu = svc.Menu(ctx, "u1")
	assert.Equal(t, "Judge", menu.Role)
	assert.Equal(t, navigation.VisibleItems(role.Judge), menu.Items)
}

func TestDraftServiceSubmitAndExport(t *testing.T) {
	ctx := context.Background()
	pusher := &recordingPusher{}
	pub := &recordingPublisher{}
	gen := genFunc(func(_ context.Context, prompt string) (string, error) {
		assert.Contains(t, prompt, "Non-Disclosure Agreement")
		return "```markdown\n# NDA\n\nThe parties agree.\n```", nil
	})
	svc := NewDraftService(gen, newWorkspace(), pusher, pub, logger.NewNop())

	_, err := svc.ExportPDF(ctx, "u1")
	assert.ErrorIs(t, err, draft.ErrNoDocument)

	snap, err := svc.Submit(ctx, "u1", &dto.CreateDraftRequest{Prompt: "Two startups", Template: "contract", Subtype: "nda"})
	require.NoError(t, err)
	assert.Equal(t, draft.StateSucceeded, snap.State)
	require.NotNil(t, snap.Document)
	assert.Equal(t, "# NDA\n\nThe parties agree.", snap.Document.Markdown)

	frames := pusher.snapshot()
	require.Len(t, frames, 2)
	assert.Equal(t, dto.DraftStateFrame{State: "submitting"}, frames[0].Data)
	assert.Equal(t, dto.DraftStateFrame{State: "succeeded"}, frames[1].Data)
	assert.Equal(t, []string{events.TypeDraftGenerated}, pub.types())

	pdf, err := svc.ExportPDF(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF-"))

	docx, err := svc.ExportDOCX(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(docx), "PK"))

	got := svc.Get(ctx, "u1")
	assert.Equal(t, draft.StateSucceeded, got.State)
	assert.Len(t, got.Templates, 4)

	reset := svc.Reset(ctx, "u1")
	assert.Equal(t, draft.StateIdle, reset.State)
	_, err = svc.ExportDOCX(ctx, "u1")
	assert.ErrorIs(t, err, draft.ErrNoDocument)
}

func TestDraftServiceInvalidRequest(t *testing.T) {
	pub := &recordingPublisher{}
	var calls atomic.Int32
	gen := genFunc(func(context.Context, string) (string, error) {
		calls.Add(1)
		return "x", nil
	})
	svc := NewDraftService(gen, newWorkspace(), nil, pub, logger.NewNop())

	snap, err := svc.Submit(context.Background(), "u1", &dto.CreateDraftRequest{Template: "Contract", Subtype: "NDA"})
	assert.ErrorIs(t, err, draft.ErrInvalidRequest)
	assert.EqualError(t, err, "Prompt and template are required.")
	assert.Equal(t, draft.StateIdle, snap.State)
	assert.Zero(t, calls.Load())
	assert.Empty(t, pub.types())
}

func TestChatServiceStreamsReply(t *testing.T) {
	ctx := context.Background()
	pusher := &recordingPusher{}
	completer := genFunc(func(_ context.Context, prompt string) (string, error) {
		assert.True(t, strings.HasSuffix(prompt, "User query: What is bail?"))
		return "Bail is conditional release.", nil
	})
	svc := NewChatService(completer, "sys", newWorkspace(), pusher, RevealSettings{Step: 5, Interval: time.Millisecond}, logger.NewNop())

	resp, err := svc.Send(ctx, "u1", &dto.SendMessageRequest{Text: "What is bail?"})
	require.NoError(t, err)
	assert.Equal(t, "What is bail?", resp.Question.Text)
	assert.Equal(t, "Bail is conditional release.", resp.Reply.Text)
	assert.True(t, resp.Reply.IsTyping)

	require.Eventually(t, func() bool {
		msgs := svc.Transcript(ctx, "u1").Messages
		return len(msgs) == 2 && !msgs[1].IsTyping
	}, 2*time.Second, 5*time.Millisecond)

	frames := pusher.snapshot()
	require.NotEmpty(t, frames)
	last := frames[len(frames)-1].Data.(dto.ChatTypingFrame)
	assert.True(t, last.Done)
	assert.Equal(t, "Bail is conditional release.", last.Text)
	assert.Equal(t, resp.Reply.ID, last.MessageID)
	for _, f := range frames[:len(frames)-1] {
		assert.False(t, f.Data.(dto.ChatTypingFrame).Done)
	}

	cleared := svc.Reset(ctx, "u1")
	assert.Empty(t, cleared.Messages)
	assert.NotNil(t, cleared.Messages)
}

func TestChatServiceFallback(t *testing.T) {
	completer := genFunc(func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	})
	svc := NewChatService(completer, "sys", newWorkspace(), nil, RevealSettings{Step: 100}, logger.NewNop())

	resp, err := svc.Send(context.Background(), "u1", &dto.SendMessageRequest{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "I apologize, there was an error processing your request. Please try again later.", resp.Reply.Text)
}

type fakeBackend struct {
	summarizeErrs atomic.Int32
}

func (b *fakeBackend) Upload(_ context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if string(data) != "the facts" {
		return "", errors.New("unexpected body")
	}
	return "doc-" + name, nil
}

func (b *fakeBackend) Summarize(_ context.Context, fileID string) (string, error) {
	if b.summarizeErrs.Load() > 0 {
		b.summarizeErrs.Add(-1)
		return "", errors.New("ml service returned 500")
	}
	return "Summary of " + fileID, nil
}

type summaryFixture struct {
	svc     ISummaryService
	files   *filestore.Store
	pub     *recordingPublisher
	pusher  *recordingPusher
	backend *fakeBackend
}

func newSummaryFixture(t *testing.T) *summaryFixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	files, err := filestore.NewStore(t.TempDir())
	require.NoError(t, err)
	workspace := newWorkspace()
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })

	f := &summaryFixture{files: files, pub: &recordingPublisher{}, pusher: &recordingPusher{}, backend: &fakeBackend{}}
	consumer := NewConsumerService(pubSub, "summary_jobs", workspace, summary.NewPipeline(f.backend), f.pub, logger.NewNop())
	require.NoError(t, consumer.Consume(ctx))

	f.svc = NewSummaryService(files, workspace, pubSub, "summary_jobs", f.pusher, logger.NewNop())
	return f
}

func (f *summaryFixture) waitStage(t *testing.T, id, stage string) *summary.Snapshot {
	t.Helper()
	var snap *summary.Snapshot
	require.Eventually(t, func() bool {
		s, err := f.svc.Get(context.Background(), "u1", id)
		if err != nil {
			return false
		}
		snap = s
		return s.Stage == stage
	}, 2*time.Second, 5*time.Millisecond)
	return snap
}

func TestSummaryServiceRunsPipeline(t *testing.T) {
	ctx := context.Background()
	f := newSummaryFixture(t)

	created, err := f.svc.Create(ctx, "u1", "case.txt", "text/plain", strings.NewReader("the facts"))
	require.NoError(t, err)
	assert.Equal(t, "processing", created.Stage)
	assert.Equal(t, "case.txt", created.File.Name)

	done := f.waitStage(t, created.ID, "done")
	assert.Equal(t, "Summary of doc-case.txt", done.Summary)
	assert.Equal(t, "doc-case.txt", done.FileID)
	require.Eventually(t, func() bool {
		return len(f.pub.types()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{events.TypeSummaryCompleted}, f.pub.types())

	var stages []int
	for _, fr := range f.pusher.snapshot() {
		stages = append(stages, fr.Data.(dto.SummaryStageFrame).StageIndex)
	}
	assert.Equal(t, []int{1, 2}, stages)

	_, err = f.svc.Get(ctx, "someone-else", created.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)

	handle, err := f.svc.File(ctx, "u1", created.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Remove(ctx, "u1", created.ID))
	assert.True(t, handle.Released())
	assert.Zero(t, f.files.Len())
	_, err = f.svc.Get(ctx, "u1", created.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestSummaryServiceFailureThenRetry(t *testing.T) {
	ctx := context.Background()
	f := newSummaryFixture(t)
	f.backend.summarizeErrs.Store(1)

	created, err := f.svc.Create(ctx, "u1", "case.txt", "", strings.NewReader("the facts"))
	require.NoError(t, err)

	failed := f.waitStage(t, created.ID, "failed")
	assert.Equal(t, summary.FailureMessage, failed.Error)
	require.Eventually(t, func() bool {
		return len(f.pub.types()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{events.TypeSummaryFailed}, f.pub.types())

	retried, err := f.svc.Retry(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "processing", retried.Stage)

	done := f.waitStage(t, created.ID, "done")
	assert.Empty(t, done.Error)

	_, err = f.svc.Retry(ctx, "u1", created.ID)
	assert.ErrorIs(t, err, summary.ErrNotRetryable)
}

func TestSummaryServiceReplaceFile(t *testing.T) {
	ctx := context.Background()
	f := newSummaryFixture(t)

	created, err := f.svc.Create(ctx, "u1", "case.txt", "text/plain", strings.NewReader("the facts"))
	require.NoError(t, err)
	f.waitStage(t, created.ID, "done")
	first, err := f.svc.File(ctx, "u1", created.ID)
	require.NoError(t, err)

	replaced, err := f.svc.ReplaceFile(ctx, "u1", created.ID, "appeal.txt", "text/plain", strings.NewReader("the facts"))
	require.NoError(t, err)
	assert.Equal(t, "appeal.txt", replaced.File.Name)
	assert.True(t, first.Released())

	done := f.waitStage(t, created.ID, "done")
	assert.Equal(t, "Summary of doc-appeal.txt", done.Summary)
	assert.Equal(t, 1, f.files.Len())
}

type refusingQueue struct{}

func (refusingQueue) Publish(string, ...*message.Message) error { return errors.New("queue closed") }
func (refusingQueue) Close() error                               { return nil }

func TestSummaryServiceUnqueuedJobFailsAndCanRetry(t *testing.T) {
	ctx := context.Background()
	files, err := filestore.NewStore(t.TempDir())
	require.NoError(t, err)
	pusher := &recordingPusher{}
	svc := NewSummaryService(files, newWorkspace(), refusingQueue{}, "summary_jobs", pusher, logger.NewNop())

	created, err := svc.Create(ctx, "u1", "case.txt", "text/plain", strings.NewReader("the facts"))
	require.NoError(t, err)
	assert.Equal(t, "failed", created.Stage)
	assert.Equal(t, summary.FailureMessage, created.Error)

	got, err := svc.Get(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Stage)

	retried, err := svc.Retry(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", retried.Stage)

	replaced, err := svc.ReplaceFile(ctx, "u1", created.ID, "appeal.txt", "text/plain", strings.NewReader("the facts"))
	require.NoError(t, err)
	assert.Equal(t, "failed", replaced.Stage)
	assert.Equal(t, "appeal.txt", replaced.File.Name)

	last := pusher.snapshot()
	require.NotEmpty(t, last)
	assert.Equal(t, "failed", last[len(last)-1].Data.(dto.SummaryStageFrame).Stage)
}

type captureMailer struct {
	to, sender, name, body string
	err                    error
}

func (m *captureMailer) SendDocument(to, sender string, doc mailer.Attachment) error {
	if m.err != nil {
		return m.err
	}
	rc, err := doc.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	m.to, m.sender, m.name, m.body = to, sender, doc.Name, string(data)
	return nil
}

func upload(name, body string) *Upload {
	return &Upload{Name: name, ContentType: "text/plain", Open: func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	}}
}

func TestShareService(t *testing.T) {
	ctx := context.Background()
	files, err := filestore.NewStore(t.TempDir())
	require.NoError(t, err)
	m := &captureMailer{}
	pub := &recordingPublisher{}
	svc := NewShareService(files, m, pub, logger.NewNop())

	resp, err := svc.Share(ctx, "u1", &dto.ShareRequest{RecipientEmail: "client@example.com"}, upload("deed.txt", "signed"))
	require.NoError(t, err)
	assert.Equal(t, "client@example.com", resp.Recipient)
	assert.Equal(t, "deed.txt", resp.File.Name)
	assert.Equal(t, int64(6), resp.File.Size)
	assert.Equal(t, "signed", m.body)
	assert.Equal(t, "u1", m.sender)
	assert.Zero(t, files.Len())
	assert.Equal(t, []string{events.TypeDocumentShared}, pub.types())
}

func TestShareServiceErrors(t *testing.T) {
	ctx := context.Background()
	files, err := filestore.NewStore(t.TempDir())
	require.NoError(t, err)
	m := &captureMailer{err: errors.New("smtp down")}
	pub := &recordingPublisher{}
	svc := NewShareService(files, m, pub, logger.NewNop())

	var httpErr *serverutils.HTTPError

	_, err = svc.Share(ctx, "u1", &dto.ShareRequest{}, upload("a.txt", "x"))
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Equal(t, ShareMissingInputMessage, httpErr.Message)

	_, err = svc.Share(ctx, "u1", &dto.ShareRequest{RecipientEmail: "a@b.co"}, nil)
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, ShareMissingInputMessage, httpErr.Message)

	_, err = svc.Share(ctx, "u1", &dto.ShareRequest{RecipientEmail: "not-an-email"}, upload("a.txt", "x"))
	assert.Error(t, err)
	assert.False(t, errors.As(err, &httpErr))

	_, err = svc.Share(ctx, "u1", &dto.ShareRequest{RecipientEmail: "a@b.co"}, upload("a.txt", "x"))
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.Code)
	assert.Equal(t, ShareFailedMessage, httpErr.Message)
	assert.Zero(t, files.Len())
	assert.Empty(t, pub.types())
}

type fakeSubscriber struct {
	subject, durable string
	handler          pktNats.EventHandler
}

func (s *fakeSubscriber) Subscribe(_ context.Context, subject, durable string, h pktNats.EventHandler) error {
	s.subject, s.durable, s.handler = subject, durable, h
	return nil
}

func TestAuditServiceSubscribesToAllEvents(t *testing.T) {
	sub := &fakeSubscriber{}
	svc := NewAuditService(sub, logger.NewNop())

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, "events.>", sub.subject)
	assert.Equal(t, "audit", sub.durable)
	require.NotNil(t, sub.handler)
	assert.NoError(t, sub.handler(context.Background(), events.RoleChanged("u1", "User", "Judge")))
}
