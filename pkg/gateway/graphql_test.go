package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedQuery struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func TestGetDocumentClearsMetricsUntilCompleted(t *testing.T) {
	var captured capturedQuery
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/graphql", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"data":{"getDocumento":{"documento_id":900,"nombre_archivo":"thesis.pdf","estado":"PROCESANDO","score_plagio":0.4}}}`))
	})

	ctx := ContextWithToken(context.Background(), "tok")
	doc, err := client.GetDocument(ctx, "900")
	require.NoError(t, err)

	assert.Contains(t, captured.Query, "getDocumento(id: $id)")
	assert.Equal(t, float64(900), captured.Variables["id"])
	assert.Equal(t, entity.DocumentStatusProcessing, doc.Status)
	assert.Nil(t, doc.PlagiarismScore)
}

func TestGetDocumentCompleted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"getDocumento":{"documento_id":"900","estado":"COMPLETADO","score_plagio":12.5,"page_count":3}}}`))
	})

	doc, err := client.GetDocument(context.Background(), "900")
	require.NoError(t, err)
	require.NotNil(t, doc.PlagiarismScore)
	assert.Equal(t, 12.5, *doc.PlagiarismScore)
	assert.Equal(t, 3, *doc.PageCount)
}

func TestGetDocumentNullIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"getDocumento":null}}`))
	})

	_, err := client.GetDocument(context.Background(), "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGraphQLFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "graphql errors",
			status: http.StatusOK,
			body:   `{"errors":[{"message":"Proyecto no encontrado"}],"data":null}`,
			check: func(t *testing.T, err error) {
				var gqlErr *GraphQLError
				require.True(t, errors.As(err, &gqlErr))
				assert.Equal(t, "Proyecto no encontrado", Message(err))
			},
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `<html>gateway</html>`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
		{
			name:   "missing data",
			status: http.StatusOK,
			body:   `{}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `Token expirado`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnauthorized)
				assert.Equal(t, "Token expirado", Message(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.GetProject(context.Background(), "42")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestProjectQueries(t *testing.T) {
	var captured capturedQuery
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = capturedQuery{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		switch {
		case captured.Variables["nombre"] != nil:
			_, _ = w.Write([]byte(`{"data":{"crearProyecto":{"proyecto_id":5,"nombre":"Tesis","usuario_id":7}}}`))
		default:
			_, _ = w.Write([]byte(`{"data":{"getProyectosPorUsuarioYOrganizacion":[{"proyecto_id":5,"nombre":"Tesis"}]}}`))
		}
	})
	ctx := context.Background()

	projects, err := client.ListProjectsByUserAndOrganization(ctx, 7, "org-1")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, entity.ID("5"), projects[0].Id)
	assert.Equal(t, "org-1", captured.Variables["organizacion_id"])

	created, err := client.CreateProject(ctx, CreateProjectInput{Name: "Tesis", UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, "Tesis", created.Name)
	_, hasOrg := captured.Variables["organizacion_id"]
	assert.False(t, hasOrg)
}
