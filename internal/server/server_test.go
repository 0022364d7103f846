package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"legalai-be/internal/bootstrap"
	"legalai-be/internal/config"
	"legalai-be/internal/controller"
	"legalai-be/internal/handler"
	"legalai-be/internal/pkg/logger"
	"legalai-be/internal/pkg/mailer"
	"legalai-be/internal/pkg/serverutils"
	"legalai-be/internal/repository/memory"
	"legalai-be/internal/routes"
	"legalai-be/internal/service"
	"legalai-be/internal/websocket"
	"legalai-be/pkg/events"
	"legalai-be/pkg/filestore"
	"legalai-be/pkg/llm"
	"legalai-be/pkg/navigation"
	"legalai-be/pkg/role"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type silentLLM struct{}

func (silentLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	return "ok", nil
}

type nopMailer struct{}

func (nopMailer) SendDocument(string, string, mailer.Attachment) error { return nil }

func testContainer(t *testing.T) *bootstrap.Container {
	t.Helper()
	log := logger.NewNop()
	files, err := filestore.NewStore(t.TempDir())
	require.NoError(t, err)
	workspace := memory.NewWorkspaceRepository(time.Hour, 0)
	roles := role.NewStore(memory.NewRoleStorage(), log)
	sessions := serverutils.NewSessionReader("secret")
	hub := websocket.NewHub(nil, log)
	queue := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { queue.Close() })

	return &bootstrap.Container{
		RoleController:       controller.NewRoleController(service.NewRoleService(roles, events.NopPublisher{}, log)),
		NavigationController: controller.NewNavigationController(service.NewNavigationService(navigation.NewFilter(roles), routes.Table(), roles), sessions),
		DraftController:      controller.NewDraftController(service.NewDraftService(silentLLM{}, workspace, hub, events.NopPublisher{}, log)),
		ChatController:       controller.NewChatController(service.NewChatService(silentLLM{}, "sys", workspace, hub, service.RevealSettings{Step: 3}, log)),
		SummaryController:    controller.NewSummaryController(service.NewSummaryService(files, workspace, queue, "summary_jobs", hub, log)),
		ShareController:      controller.NewShareController(service.NewShareService(files, nopMailer{}, events.NopPublisher{}, log)),
		Sessions:             sessions,
		Roles:                roles,
		Logger:               log,
		StreamHandler:        handler.NewStreamHandler(hub, log),
		WebSocketHub:         hub,
	}
}

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Port: "0", CorsAllowedOrigins: "http://localhost:5173"}}
}

func TestEveryDeclaredAPIRouteIsMounted(t *testing.T) {
	srv := New(testConfig(), testContainer(t))

	var declared []string
	for _, r := range routes.APIRoutes() {
		declared = append(declared, r.Key())
	}
	sort.Strings(declared)

	assert.Equal(t, declared, srv.Registered())
}

func TestGuardAppliesToMountedRoutes(t *testing.T) {
	srv := New(testConfig(), testContainer(t))

	resp, err := srv.GetApp().Test(httptest.NewRequest(http.MethodGet, "/api/draft", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = srv.GetApp().Test(httptest.NewRequest(http.MethodGet, "/api/navigation/resolve?path=/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = srv.GetApp().Test(httptest.NewRequest(http.MethodGet, "/api/stream", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
