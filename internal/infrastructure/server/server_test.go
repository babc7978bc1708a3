package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/api/ws"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/engine"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/providers/fixture"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/storage"
)

const catalogYAML = `
applications:
  - {label: Mail, user_scope: "0", component: {package: org.mail, class: Inbox}}
`

func newTestServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o644))
	src, err := fixture.Open(path, nil)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	metrics := monitoring.NewMetrics()
	hub := ws.NewHub(nil).WithMetrics(metrics)

	eng, err := engine.New(context.Background(), engine.Deps{
		Store: storage.NewMemory(),
		Sources: engine.Sources{
			Applications:  src.Applications(),
			Shortcuts:     src.Shortcuts(),
			Contacts:      src.Contacts(),
			Notifications: src.Notifications(),
		},
		Sink:    hub,
		Metrics: metrics,
	}, engine.FromAppConfig(cfg))
	require.NoError(t, err)
	require.NoError(t, eng.Start(context.Background()))
	t.Cleanup(eng.Close)

	srv := New(cfg, eng, hub, metrics, nil)
	t.Cleanup(func() { srv.Close() })
	return srv, eng
}

func serve(srv *Server, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestRoutes(t *testing.T) {
	srv, eng := newTestServer(t)
	require.Eventually(t, func() bool {
		_, ok := eng.Current()
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/catalog").Code)

	mail := "/catalog/items/" + url.PathEscape("0/org.mail/Inbox")
	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, mail).Code)
	assert.Equal(t, http.StatusOK, serve(srv, http.MethodPost, mail+"/activate").Code)

	metrics := serve(srv, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "catalog_http_requests_total")
}
