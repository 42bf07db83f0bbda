package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveGateway(t *testing.T) {
	m := New()
	m.ObserveGateway("getDocumento", 200, 40*time.Millisecond)
	m.ObserveGateway("getDocumento", 200, 10*time.Millisecond)
	m.ObserveGateway("upload", 0, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.gatewayRequests.WithLabelValues("getDocumento", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gatewayRequests.WithLabelValues("upload", "0")))
}

func TestStatusUpdateAndUploads(t *testing.T) {
	m := New()
	m.StatusUpdate("POLLING", false, 0)
	m.StatusUpdate("TERMINAL_COMPLETED", true, 6*time.Second)
	m.Upload(true)
	m.Upload(false)
	m.WorkspaceOpened()
	m.WorkspaceOpened()
	m.WorkspaceClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusUpdates.WithLabelValues("TERMINAL_COMPLETED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.workspaces))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/ping", func(ctx *fiber.Ctx) error { return ctx.SendString("pong") })
	app.Get("/metrics", m.Handler())

	_, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `plagio_console_http_requests_total{method="GET",route="/ping",status="200"} 1`)
}
