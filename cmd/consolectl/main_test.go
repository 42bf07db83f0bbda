package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Gatu-1548/plagio-ia/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	a := &app{}
	defer a.close()
	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestLoginPersistsSessionForLaterCommands(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ana@uni.edu",
		"id":  7,
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
	}))
	defer srv.Close()

	t.Setenv("GATEWAY_BASE_URL", srv.URL)
	state := filepath.Join(t.TempDir(), "console.json")

	require.NoError(t, run(t, "--state", state, "--no-color", "login", "--email", "ana@uni.edu", "--password", "secret"))

	store, err := storage.NewFileStore(state)
	require.NoError(t, err)
	v, ok, err := storage.NewScoped(store, cliTab).Get(context.Background(), storage.KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, token, v)

	require.NoError(t, run(t, "--state", state, "--no-color", "whoami"))
	require.NoError(t, run(t, "--state", state, "--no-color", "logout"))

	store, err = storage.NewFileStore(state)
	require.NoError(t, err)
	_, ok, err = storage.NewScoped(store, cliTab).Get(context.Background(), storage.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCommandsRequireLogin(t *testing.T) {
	t.Setenv("GATEWAY_BASE_URL", "http://127.0.0.1:1")
	state := filepath.Join(t.TempDir(), "console.json")

	err := run(t, "--state", state, "--no-color", "projects", "list")
	assert.ErrorContains(t, err, "sign in first")
}

func TestLoginValidatesEmail(t *testing.T) {
	state := filepath.Join(t.TempDir(), "console.json")
	err := run(t, "--state", state, "--no-color", "login", "--email", "nope", "--password", "x")
	assert.Error(t, err)
}
