package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginReturnsToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ana@uni.edu", creds.Email)
		_, _ = w.Write([]byte(`{"token":"jwt-token"}`))
	})

	token, err := client.Login(context.Background(), Credentials{Email: "ana@uni.edu", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
}

func TestLoginWithoutTokenIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.Register(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestListMembersAcceptsArrayAndPage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array", `[{"id":1,"userId":7,"role":"OWNER","status":"ACTIVE"}]`},
		{"page", `{"content":[{"id":1,"userId":"7","role":"OWNER","status":"ACTIVE"}],"totalElements":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rawQuery string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				rawQuery = r.URL.RawQuery
				_, _ = w.Write([]byte(tt.body))
			})

			page := 0
			members, err := client.ListMembers(context.Background(), "org-1", MemberQuery{Size: 20, Page: &page, Sort: "userId,asc"})
			require.NoError(t, err)
			require.Len(t, members, 1)
			assert.Equal(t, "7", members[0].UserId.String())
			assert.Equal(t, "page=0&size=20&sort=userId%2Casc", rawQuery)
		})
	}
}

func TestCountMembersByStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/organizations/org-1/members/count", r.URL.Path)
		assert.Equal(t, "ACTIVE", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`{"count":3}`))
	})

	n, err := client.CountMembers(context.Background(), "org-1", "ACTIVE")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestDeleteUserByEmailEscapesPath(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/users/by-email/ana+test@uni.edu", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteUserByEmail(context.Background(), "ana+test@uni.edu"))
}

func TestSetPlanActive(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/plans/p1/active", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("value"))
		_, _ = w.Write([]byte(`{"id":"p1","active":false}`))
	})

	plan, err := client.SetPlanActive(context.Background(), "p1", false)
	require.NoError(t, err)
	assert.False(t, plan.Active)
}

func TestRiskTrendsDefaultsToMonthly(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bi/org/org-1/trends/riesgo/usuario/7", r.URL.Path)
		assert.Equal(t, "monthly", r.URL.Query().Get("period"))
		_, _ = w.Write([]byte(`{"2025-01":{"Alto":1,"Medio":2,"Bajo":3}}`))
	})

	trends, err := client.RiskTrendsByUser(context.Background(), "org-1", 7, "")
	require.NoError(t, err)
	assert.Equal(t, float64(2), trends["2025-01"].Medium)
}

func TestStatusErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *StatusError
		want string
	}{
		{"json message", &StatusError{StatusCode: 400, Body: `{"message":"Email ya registrado"}`}, "Email ya registrado"},
		{"json error field", &StatusError{StatusCode: 403, Body: `{"error":"Forbidden"}`}, "Forbidden"},
		{"plain body", &StatusError{StatusCode: 500, Body: "boom"}, "boom"},
		{"empty body", &StatusError{StatusCode: 404, Status: "404 Not Found"}, "Error 404: Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Message())
		})
	}
}

func TestObserveIsCalledPerRequest(t *testing.T) {
	var observed []int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	client.observe = func(op string, status int, _ time.Duration) {
		assert.Equal(t, "get plan", op)
		observed = append(observed, status)
	}

	_, err := client.GetPlan(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, []int{http.StatusNotFound}, observed)
}
