package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://gym", nil, nil)
	assert.Error(t, err)
	_, err = NewClient("://", nil, nil)
	assert.Error(t, err)
}

func TestClient_ListMembersSendsBearerAndToleratesLooseFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/members", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"_id":"65f0c2a1b2c3d4e5f6a7b8c9","name":"Ravi","phone":9876543210,"plan":"Monthly","expiry":"2025-04-01","amount":"800","derivedStatus":"Active"},
			{"id":"65f0c2a1b2c3d4e5f6a7b8ca","name":"Anita","phone":"98111 22233","expiryDate":"bad"}
		]`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/", StaticToken("tok-1"), srv.Client())
	require.NoError(t, err)

	members, err := c.ListMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "9876543210", members[0].Phone)
	assert.Equal(t, "2025-04-01", members[0].ExpiryDate)
	assert.Equal(t, 800.0, members[0].Amount)
	assert.Equal(t, "bad", members[1].ExpiryDate)
}

func TestClient_EmptyRosterIsNotNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, nil, srv.Client())
	require.NoError(t, err)
	members, err := c.ListMembers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, members)
	assert.Empty(t, members)
}

func TestClient_UnauthorizedMapsToAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Authorization header is missing"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, StaticToken(""), srv.Client())
	require.NoError(t, err)

	_, err = c.ListMembers(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Authorization header is missing", apiErr.Message)
}

func TestClient_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, nil, srv.Client())
	require.NoError(t, err)
	err = c.DeleteMember(context.Background(), "abc")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestClient_LoginAndCreate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"), "login must not send a token")
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "owner@gym.test", body["email"])
		_, _ = w.Write([]byte(`{"token":"new-token","expiresAt":"2025-03-10T10:00:00Z","user":{"id":"u1","name":"Owner","email":"owner@gym.test","role":"owner","gymName":"Iron Den"}}`))
	})
	mux.HandleFunc("/api/v1/members", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in MemberInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Ravi", in.Name)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"65f0c2a1b2c3d4e5f6a7b8c9","name":"Ravi","plan":"Yearly","joiningDate":"2025-03-10","expiryDate":"2026-03-10"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(srv.URL, StaticToken("old"), srv.Client())
	require.NoError(t, err)

	res, err := c.Login(context.Background(), "owner@gym.test", "secret")
	require.NoError(t, err)
	assert.Equal(t, "new-token", res.Token)
	assert.Equal(t, "Iron Den", res.User.GymName)

	m, err := c.CreateMember(context.Background(), MemberInput{Name: "Ravi", Plan: "Yearly"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", m.ExpiryDate)
}
