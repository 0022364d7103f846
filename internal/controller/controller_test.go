package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"legalai-be/internal/pkg/logger"
	"legalai-be/internal/pkg/mailer"
	"legalai-be/internal/pkg/serverutils"
	"legalai-be/internal/repository/memory"
	"legalai-be/internal/routes"
	"legalai-be/internal/service"
	"legalai-be/pkg/events"
	"legalai-be/pkg/filestore"
	"legalai-be/pkg/llm"
	"legalai-be/pkg/navigation"
	"legalai-be/pkg/role"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "controller-secret"

type genFunc func(ctx context.Context, prompt string) (string, error)

func (f genFunc) Generate(ctx context.Context, prompt string, _ ...llm.Option) (string, error) {
	return f(ctx, prompt)
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	app   *fiber.App
	roles *role.Store
}

func newTestApp(t *testing.T, register func(g *serverutils.GuardedRouter, roles *role.Store, sessions *serverutils.SessionReader)) *testApp {
	t.Helper()
	roles := role.NewStore(memory.NewRoleStorage(), logger.NewNop())
	sessions := serverutils.NewSessionReader(testSecret)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	g := serverutils.NewGuardedRouter(app.Group("/api"), "/api", routes.Table(), sessions, roles, logger.NewNop())
	register(g, roles, sessions)
	return &testApp{app: app, roles: roles}
}

func token(t *testing.T, subject string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": subject,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (a *testApp) do(t *testing.T, method, path, subject string, body io.Reader, contentType string) (*http.Response, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, subject))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func (a *testApp) json(t *testing.T, method, path, subject string, payload any) (*http.Response, envelope) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	return a.do(t, method, path, subject, body, "application/json")
}

func multipartBody(t *testing.T, fields map[string]string, fileName, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestRoleController(t *testing.T) {
	a := newTestApp(t, func(g *serverutils.GuardedRouter, roles *role.Store, _ *serverutils.SessionReader) {
		NewRoleController(service.NewRoleService(roles, events.NopPublisher{}, logger.NewNop())).RegisterRoutes(g)
	})

	resp, env := a.json(t, "GET", "/api/role", "u1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"role":"User","landing_path":"/summarisation"}`, string(env.Data))

	resp, env = a.json(t, "PUT", "/api/role", "u1", map[string]string{"role": "judge"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"role":"Judge","landing_path":"/transcript"}`, string(env.Data))

	resp, env = a.json(t, "PUT", "/api/role", "u1", map[string]string{"role": "Admin"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Role must be one of User, Lawyer or Judge.", env.Message)

	resp, env = a.json(t, "PUT", "/api/role", "u1", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Role is required", env.Message)

	resp, env = a.json(t, "GET", "/api/role", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"redirect":"/login"}`, string(env.Data))
}

func TestNavigationController(t *testing.T) {
	a := newTestApp(t, func(g *serverutils.GuardedRouter, roles *role.Store, sessions *serverutils.SessionReader) {
		svc := service.NewNavigationService(navigation.NewFilter(roles), routes.Table(), roles)
		NewNavigationController(svc, sessions).RegisterRoutes(g)
	})
	_, err := a.roles.Set(context.Background(), "judge-1", role.Judge)
	require.NoError(t, err)

	resp, env := a.json(t, "GET", "/api/navigation/resolve?path=/draft", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"path":"/draft","decision":"redirect_login","redirect":"/login"}`, string(env.Data))

	_, env = a.json(t, "GET", "/api/navigation/resolve?path=/draft", "judge-1", nil)
	assert.JSONEq(t, `{"path":"/draft","decision":"redirect_forbidden","redirect":"/forbidden"}`, string(env.Data))

	_, env = a.json(t, "GET", "/api/navigation/resolve?path=/transcript", "judge-1", nil)
	assert.JSONEq(t, `{"path":"/transcript","decision":"allow"}`, string(env.Data))

	resp, _ = a.json(t, "GET", "/api/navigation/resolve?path=/admin", "judge-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = a.json(t, "GET", "/api/navigation/resolve", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = a.json(t, "GET", "/api/navigation/menu", "judge-1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var menu struct {
		Role  string `json:"role"`
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &menu))
	assert.Equal(t, "Judge", menu.Role)
	var ids []string
	for _, item := range menu.Items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"judge-dashboard", "summarisation", "transcript", "document-sharing"}, ids)
}

func TestDraftController(t *testing.T) {
	gen := genFunc(func(context.Context, string) (string, error) {
		return "# Lease Agreement\n\nRent is due monthly.", nil
	})
	a := newTestApp(t, func(g *serverutils.GuardedRouter, _ *role.Store, _ *serverutils.SessionReader) {
		svc := service.NewDraftService(gen, memory.NewWorkspaceRepository(time.Hour, 0), nil, events.NopPublisher{}, logger.NewNop())
		NewDraftController(svc).RegisterRoutes(g)
	})
	_, err := a.roles.Set(context.Background(), "judge-1", role.Judge)
	require.NoError(t, err)

	resp, _ := a.do(t, "GET", "/api/draft/export/pdf", "u1", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env := a.json(t, "POST", "/api/draft", "u1", map[string]string{"prompt": "Flat in Pune", "template": "Contract"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please select a Contract type.", env.Message)

	resp, env = a.json(t, "POST", "/api/draft", "u1", map[string]string{"prompt": "Flat in Pune", "template": "Contract", "subtype": "Lease"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap struct {
		State    string `json:"state"`
		Document struct {
			Markdown string `json:"markdown"`
		} `json:"document"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, "succeeded", snap.State)
	assert.Equal(t, "# Lease Agreement\n\nRent is due monthly.", snap.Document.Markdown)

	resp, _ = a.do(t, "GET", "/api/draft/export/docx", "u1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "legal_document.docx")
	assert.Equal(t, docxMIME, resp.Header.Get("Content-Type"))

	resp, _ = a.do(t, "GET", "/api/draft/export/pdf", "u1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "legal_document.pdf")
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))

	resp, env = a.json(t, "POST", "/api/draft", "judge-1", map[string]string{"prompt": "x", "template": "Will", "subtype": "Joint"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.JSONEq(t, `{"redirect":"/forbidden"}`, string(env.Data))

	resp, env = a.json(t, "DELETE", "/api/draft", "u1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"state":"idle"`)
}

func TestDraftControllerGenerationFailure(t *testing.T) {
	gen := genFunc(func(context.Context, string) (string, error) {
		return "", errors.New("upstream 503")
	})
	a := newTestApp(t, func(g *serverutils.GuardedRouter, _ *role.Store, _ *serverutils.SessionReader) {
		svc := service.NewDraftService(gen, memory.NewWorkspaceRepository(time.Hour, 0), nil, events.NopPublisher{}, logger.NewNop())
		NewDraftController(svc).RegisterRoutes(g)
	})

	resp, env := a.json(t, "POST", "/api/draft", "u1", map[string]string{"prompt": "x", "template": "Affidavit", "subtype": "General"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "An error occurred while generating the document. Please try again.", env.Message)
}

func TestChatControllerRejectsConcurrentSend(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	completer := genFunc(func(ctx context.Context, _ string) (string, error) {
		started <- struct{}{}
		<-release
		return "Answer", nil
	})
	a := newTestApp(t, func(g *serverutils.GuardedRouter, _ *role.Store, _ *serverutils.SessionReader) {
		svc := service.NewChatService(completer, "sys", memory.NewWorkspaceRepository(time.Hour, 0), nil, service.RevealSettings{Step: 100}, logger.NewNop())
		NewChatController(svc).RegisterRoutes(g)
	})

	done := make(chan int, 1)
	go func() {
		resp, _ := a.json(t, "POST", "/api/chat", "u1", map[string]string{"text": "first"})
		done <- resp.StatusCode
	}()
	<-started

	resp, env := a.json(t, "POST", "/api/chat", "u1", map[string]string{"text": "second"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Please wait for the current reply.", env.Message)

	close(release)
	assert.Equal(t, http.StatusOK, <-done)

	resp, env = a.json(t, "GET", "/api/chat", "u1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var history struct {
		State    string `json:"state"`
		Messages []struct {
			Text   string `json:"text"`
			Sender string `json:"sender"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Equal(t, "idle", history.State)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "first", history.Messages[0].Text)
	assert.Equal(t, "Answer", history.Messages[1].Text)

	resp, env = a.json(t, "POST", "/api/chat", "u1", map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Text is required", env.Message)
}

type stubBackend struct{}

func (stubBackend) Upload(context.Context, string, io.Reader) (string, error) { return "doc-1", nil }
func (stubBackend) Summarize(context.Context, string) (string, error)        { return "Short summary", nil }

func TestSummaryController(t *testing.T) {
	files, err := filestore.NewStore(t.TempDir())
	require.NoError(t, err)
	a := newTestApp(t, func(g *serverutils.GuardedRouter, _ *role.Store, _ *serverutils.SessionReader) {
		svc := service.NewSummaryService(files, memory.NewWorkspaceRepository(time.Hour, 0),
			gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}), "summary_jobs", nil, logger.NewNop())
		NewSummaryController(svc).RegisterRoutes(g)
	})

	body, ct := multipartBody(t, nil, "", "")
	resp, env := a.do(t, "POST", "/api/summary", "u1", body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, missingFileMessage, env.Message)

	body, ct = multipartBody(t, nil, "order.txt", "The appeal is dismissed.")
	resp, env = a.do(t, "POST", "/api/summary", "u1", body, ct)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var snap struct {
		ID    string         `json:"id"`
		Stage string         `json:"stage"`
		File  filestore.Info `json:"file"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, "processing", snap.Stage)
	assert.Equal(t, "order.txt", snap.File.Name)

	resp, _ = a.do(t, "GET", "/api/summary/"+snap.ID+"/file", "u1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	preview, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "The appeal is dismissed.", string(preview))

	resp, _ = a.do(t, "GET", "/api/summary/"+snap.ID, "intruder", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env = a.do(t, "POST", "/api/summary/"+snap.ID+"/retry", "u1", nil, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Only a failed summary can be retried.", env.Message)

	resp, _ = a.do(t, "DELETE", "/api/summary/"+snap.ID, "u1", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, files.Len())

	resp, _ = a.do(t, "GET", "/api/summary/"+snap.ID, "u1", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type okMailer struct{ sent []string }

func (m *okMailer) SendDocument(to, _ string, doc mailer.Attachment) error {
	m.sent = append(m.sent, to+":"+doc.Name)
	return nil
}

func TestShareController(t *testing.T) {
	files, err := filestore.NewStore(t.TempDir())
	require.NoError(t, err)
	m := &okMailer{}
	a := newTestApp(t, func(g *serverutils.GuardedRouter, _ *role.Store, _ *serverutils.SessionReader) {
		NewShareController(service.NewShareService(files, m, events.NopPublisher{}, logger.NewNop())).RegisterRoutes(g)
	})

	body, ct := multipartBody(t, map[string]string{"recipient_email": "client@example.com"}, "", "")
	resp, env := a.do(t, "POST", "/api/share", "u1", body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please select a file and enter a recipient email address.", env.Message)

	body, ct = multipartBody(t, map[string]string{"recipient_email": "nope"}, "deed.pdf", "%PDF-1.4")
	resp, env = a.do(t, "POST", "/api/share", "u1", body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "RecipientEmail must be a valid email", env.Message)

	body, ct = multipartBody(t, map[string]string{"recipient_email": "client@example.com"}, "deed.pdf", "%PDF-1.4")
	resp, env = a.do(t, "POST", "/api/share", "u1", body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "File sent successfully", env.Message)
	assert.Equal(t, []string{"client@example.com:deed.pdf"}, m.sent)
	assert.Zero(t, files.Len())
}
