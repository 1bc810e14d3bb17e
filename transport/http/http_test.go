package http

import (
	"hostel/config"
	kafkaMocks "hostel/infras/kafka/mocks"
	otelMocks "hostel/infras/otel/mocks"
	"hostel/internal/handlers/health"
	"hostel/permissions"
	"hostel/shared/constant"
	"hostel/transport/http/middleware"
	"hostel/transport/http/router"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newServer(t *testing.T) *HTTP {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Upload.Driver = "s3"

	perms, err := permissions.Parse([]byte(`{"endpoints":[{"path":"/","method":"GET","skip":true}]}`))
	require.NoError(t, err)

	ot := otelMocks.NewOtel()
	app := middleware.NewAppMiddleware(ot, cfg, nil)
	authRole := middleware.NewAuthRoleMiddleware(nil, ot, perms)

	r := router.New(router.DomainHandlers{Health: health.New()}, cfg, app, authRole)

	return New(cfg, r, ot, nil)
}

func serve(h *HTTP, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

	return rec
}

func TestServeHealth(t *testing.T) {
	h := newServer(t)

	rec := serve(h, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SV PG Backend Running")
	assert.Equal(t, ServerStateReady, h.State())
}

func TestStateGuard(t *testing.T) {
	h := newServer(t)
	serve(h, http.MethodGet, "/")

	h.state.Store(int32(ServerStateInGracePeriod))

	rec := serve(h, http.MethodGet, "/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "SERVER PREPARING TO SHUT DOWN")
}

func TestSwaggerDoc(t *testing.T) {
	rec := serve(newServer(t), http.MethodGet, "/swagger/doc.json")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hostel API")
	assert.Contains(t, rec.Body.String(), "/payments/{id}/receipt")
}

func TestUnknownRoute(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, serve(newServer(t), http.MethodGet, "/nowhere").Code)
}

func TestRespondToSigterm(t *testing.T) {
	h := newServer(t)
	h.Config.Server.Env = constant.ServerEnvDevelopment
	h.Config.Server.Shutdown.CleanupPeriodSeconds = 1

	publisher := kafkaMocks.NewMockPublisher(gomock.NewController(t))
	publisher.EXPECT().Close().Return(nil)
	h.publisher = publisher

	h.setup()
	h.server = h.newServer()

	signals := make(chan os.Signal, 1)
	go h.respondToSigterm(signals)

	signals <- syscall.SIGTERM

	select {
	case <-h.stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete")
	}

	assert.Equal(t, ServerStateInCleanupPeriod, h.State())

	rec := serve(h, http.MethodGet, "/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
