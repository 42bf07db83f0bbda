package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/metrics"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/serverutils"
	"github.com/Gatu-1548/plagio-ia/internal/poller"
	"github.com/Gatu-1548/plagio-ia/internal/service"
	"github.com/Gatu-1548/plagio-ia/internal/storage"
	"github.com/Gatu-1548/plagio-ia/internal/workspace"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway answers the handful of REST and GraphQL calls the console
// makes in these tests.
type fakeGateway struct {
	mu      sync.Mutex
	uploads int
	auth    []string
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.auth = append(g.auth, r.Header.Get("Authorization"))
	g.mu.Unlock()

	switch r.URL.Path {
	case "/auth/login":
		_ = json.NewEncoder(w).Encode(map[string]string{"token": signedToken()})
	case "/upload-documento":
		g.mu.Lock()
		g.uploads++
		g.mu.Unlock()
		_, _ = w.Write([]byte(`{"documento_id": 900, "estado": "PENDIENTE"}`))
	case "/graphql":
		var req struct {
			Query string `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch {
		case strings.Contains(req.Query, "getProyectosPorUsuario("):
			_, _ = w.Write([]byte(`{"data":{"getProyectosPorUsuario":[{"proyecto_id":42,"nombre":"Tesis","usuario_id":7}]}}`))
		case strings.Contains(req.Query, "getDocumento("):
			_, _ = w.Write([]byte(`{"data":{"getDocumento":{"documento_id":900,"nombre_archivo":"tesis.pdf","estado":"EN_PROCESO"}}}`))
		case strings.Contains(req.Query, "getProyecto("):
			_, _ = w.Write([]byte(`{"data":{"getProyecto":{"proyecto_id":42,"nombre":"Tesis","documentos":[]}}}`))
		default:
			_, _ = w.Write([]byte(`{"errors":[{"message":"unexpected query"}]}`))
		}
	default:
		http.NotFound(w, r)
	}
}

func signedToken() string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "ana@uni.edu",
		"id":    7,
		"roles": []map[string]string{{"authority": "ROLE_ADMIN"}},
	})
	s, _ := token.SignedString([]byte("gateway-secret"))
	return s
}

type testApp struct {
	app      *fiber.App
	gw       *fakeGateway
	registry *workspace.Registry
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	fake := &fakeGateway{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	log := logger.NewNop()
	gw := gateway.New(gateway.Options{BaseURL: srv.URL, RequestTimeout: 2 * time.Second, Logger: log})
	m := metrics.New()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })
	publisher := service.NewPublisherService(pubSub)

	registry := workspace.NewRegistry(workspace.Dependencies{
		Storage: storage.NewMemoryStore(0),
		Gateway: gw,
		Poller:  poller.Options{Interval: time.Hour, Ceiling: 2 * time.Hour},
		Logger:  log,
	})
	t.Cleanup(registry.Close)

	documents := service.NewDocumentService(gw, publisher, m, nil, log)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api", serverutils.WorkspaceMiddleware(registry))
	NewAuthController(service.NewAuthService(gw, nil, log)).RegisterRoutes(api)
	NewProjectController(service.NewProjectService(gw, nil, log), documents).RegisterRoutes(api, serverutils.RequireSession)
	NewDocumentController(documents).RegisterRoutes(api, serverutils.RequireSession)

	return &testApp{app: app, gw: fake, registry: registry}
}

func (a *testApp) do(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := a.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp.StatusCode, body
}

func jsonRequest(method, path, tab string, payload interface{}) *http.Request {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if tab != "" {
		req.Header.Set(serverutils.TabHeader, tab)
	}
	return req
}

func login(t *testing.T, a *testApp, tab string) {
	t.Helper()
	code, _ := a.do(t, jsonRequest(http.MethodPost, "/api/auth/login", tab, map[string]string{
		"email": "ana@uni.edu", "password": "secret",
	}))
	require.Equal(t, http.StatusOK, code)
}

func TestRequestsWithoutTabAreRejected(t *testing.T) {
	a := newTestApp(t)

	code, body := a.do(t, jsonRequest(http.MethodGet, "/api/auth/session", "", nil))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
}

func TestProjectsRequireSession(t *testing.T) {
	a := newTestApp(t)

	code, body := a.do(t, jsonRequest(http.MethodGet, "/api/projects", "tab-1", nil))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, workspace.ErrSignedOut.Error(), body["message"])
}

func TestLoginValidatesBody(t *testing.T) {
	a := newTestApp(t)

	code, _ := a.do(t, jsonRequest(http.MethodPost, "/api/auth/login", "tab-1", map[string]string{"email": "not-an-email"}))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLoginThenListProjects(t *testing.T) {
	a := newTestApp(t)

	code, body := a.do(t, jsonRequest(http.MethodPost, "/api/auth/login", "tab-1", map[string]string{
		"email": "ana@uni.edu", "password": "secret",
	}))
	require.Equal(t, http.StatusOK, code)
	session := body["data"].(map[string]interface{})
	assert.Equal(t, true, session["authenticated"])
	assert.Equal(t, float64(7), session["userId"])
	assert.Equal(t, "ADMIN", session["role"])

	code, body = a.do(t, jsonRequest(http.MethodGet, "/api/projects", "tab-1", nil))
	require.Equal(t, http.StatusOK, code)
	projects := body["data"].([]interface{})
	require.Len(t, projects, 1)
	assert.Equal(t, "Tesis", projects[0].(map[string]interface{})["nombre"])

	// The token stays with the tab that signed in.
	code, _ = a.do(t, jsonRequest(http.MethodGet, "/api/projects", "tab-2", nil))
	assert.Equal(t, http.StatusUnauthorized, code)

	a.gw.mu.Lock()
	defer a.gw.mu.Unlock()
	assert.Equal(t, "Bearer "+signedToken(), a.gw.auth[len(a.gw.auth)-1])
}

func multipartUpload(t *testing.T, path, tab, name string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(UploadField, name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(serverutils.TabHeader, tab)
	return req
}

func TestUploadRejectsNonPDFBeforeSending(t *testing.T) {
	a := newTestApp(t)
	login(t, a, "tab-1")

	code, _ := a.do(t, multipartUpload(t, "/api/projects/42/documents", "tab-1", "notes.txt", []byte("plain text")))
	assert.Equal(t, http.StatusBadRequest, code)

	a.gw.mu.Lock()
	defer a.gw.mu.Unlock()
	assert.Zero(t, a.gw.uploads)
}

func TestUploadStartsTracking(t *testing.T) {
	a := newTestApp(t)
	login(t, a, "tab-1")

	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	code, body := a.do(t, multipartUpload(t, "/api/projects/42/documents", "tab-1", "tesis.pdf", pdf))
	require.Equal(t, http.StatusCreated, code, body)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "900", data["documento_id"])
	assert.Equal(t, true, data["tracking"])

	assert.Eventually(t, func() bool {
		_, body := a.do(t, jsonRequest(http.MethodGet, "/api/documents/tracking", "tab-1", nil))
		tracking := body["data"].(map[string]interface{})
		return tracking["state"] == string(poller.StatePolling) && tracking["documento_id"] == "900"
	}, 2*time.Second, 20*time.Millisecond)

	code, body = a.do(t, jsonRequest(http.MethodDelete, "/api/documents/900/track", "tab-1", nil))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, string(poller.StateIdle), body["data"].(map[string]interface{})["state"])
}
