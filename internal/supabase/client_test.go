package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAnonKey = "anon-test-key"

func setupTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(&Config{URL: srv.URL + "/", AnonKey: testAnonKey, Timeout: 5 * time.Second}, logger.NewNop())
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{name: "valid", config: &Config{URL: "https://x.supabase.co", AnonKey: "k"}},
		{name: "missing url", config: &Config{AnonKey: "k"}, wantErr: true},
		{name: "relative url", config: &Config{URL: "x.supabase.co", AnonKey: "k"}, wantErr: true},
		{name: "missing key", config: &Config{URL: "https://x.supabase.co"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config, logger.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, client)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func TestSignInWithPassword(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, testAnonKey, r.Header.Get("apikey"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ana@example.com", body["email"])
		assert.Equal(t, "secret", body["password"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"a.b.c","token_type":"bearer","expires_in":3600,"expires_at":1900000000,"refresh_token":"r1","user":{"id":"u1","email":"ana@example.com"}}`)
	})

	resp, err := client.SignInWithPassword(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	assert.True(t, resp.HasSession())
	assert.JSONEq(t, `{"id":"u1","email":"ana@example.com"}`, string(resp.User))

	tok := resp.Token(time.Now())
	require.NotNil(t, tok)
	assert.Equal(t, "a.b.c", tok.AccessToken)
	assert.Equal(t, "r1", tok.RefreshToken)
	assert.Equal(t, time.Unix(1900000000, 0), tok.Expiry)
}

func TestSignInWithPassword_Rejected(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
	})

	_, err := client.SignInWithPassword(context.Background(), "ana@example.com", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid login credentials", apiErr.Message)
	assert.Equal(t, "Invalid login credentials", apiErr.Field("error_description"))
	assert.Empty(t, apiErr.Field("msg"))
	assert.False(t, IsUnauthorized(err))
}

func TestSignUp(t *testing.T) {
	t.Run("session issued", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/signup", r.URL.Path)
			_, _ = io.WriteString(w, `{"access_token":"a.b.c","expires_in":60,"user":{"id":"u2"}}`)
		})

		resp, err := client.SignUp(context.Background(), "bo@example.com", "secret1")
		require.NoError(t, err)
		assert.True(t, resp.HasSession())

		now := time.Unix(1000, 0)
		assert.Equal(t, now.Add(time.Minute), resp.Token(now).Expiry)
	})

	t.Run("confirmation pending", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"id":"u3","email":"cy@example.com","confirmation_sent_at":"2026-01-01T00:00:00Z"}`)
		})

		resp, err := client.SignUp(context.Background(), "cy@example.com", "secret1")
		require.NoError(t, err)
		assert.False(t, resp.HasSession())
		assert.Nil(t, resp.Token(time.Now()))
		assert.Contains(t, string(resp.User), `"id":"u3"`)
	})

	t.Run("msg error", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"code":422,"msg":"User already registered"}`)
		})

		_, err := client.SignUp(context.Background(), "cy@example.com", "secret1")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "User already registered", apiErr.Message)
		assert.Equal(t, "User already registered", apiErr.Field("msg"))
	})
}

func TestRefreshSession(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "r1", body["refresh_token"])
		_, _ = io.WriteString(w, `{"access_token":"new.token.sig","refresh_token":"r2","expires_in":3600}`)
	})

	resp, err := client.RefreshSession(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "new.token.sig", resp.AccessToken)
	assert.Equal(t, "r2", resp.RefreshToken)
}

func TestSignOut(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.SignOut(context.Background(), "tok"))
}

func TestSelect(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/models", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, testAnonKey, r.Header.Get("apikey"))
		_, _ = io.WriteString(w, `[{"id":1,"name":"m1"}]`)
	})

	var rows []map[string]interface{}
	err := client.Select(context.Background(), "tok", "models", url.Values{
		"select": {"*"},
		"order":  {"created_at.desc"},
	}, &rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "m1", rows[0]["name"])
}

func TestSelect_Unauthorized(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"code":"PGRST301","message":"JWT expired"}`)
	})

	var rows []map[string]interface{}
	err := client.Select(context.Background(), "tok", "models", nil, &rows)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Contains(t, err.Error(), "JWT expired")
}

func TestInsert(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `[{"id":9,"name":"m9"}]`)
	})

	var rows []map[string]interface{}
	err := client.Insert(context.Background(), "tok", "models", map[string]string{"name": "m9"}, &rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestUpdateAndDelete(t *testing.T) {
	var calls []string
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.RawQuery)
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	require.NoError(t, client.Update(ctx, "tok", "models", Eq("id", "7"), map[string]string{"name": "x"}))
	require.NoError(t, client.Delete(ctx, "tok", "models", Eq("id", "7")))
	assert.Equal(t, []string{"PATCH id=eq.7", "DELETE id=eq.7"}, calls)

	assert.ErrorIs(t, client.Update(ctx, "tok", "models", nil, nil), ErrMissingFilter)
	assert.ErrorIs(t, client.Delete(ctx, "tok", "models", url.Values{}), ErrMissingFilter)
	assert.Len(t, calls, 2)
}

func TestNewAPIError_PlainText(t *testing.T) {
	apiErr := newAPIError(http.StatusBadGateway, []byte("upstream down\n"))
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.Empty(t, apiErr.Field("message"))

	apiErr = newAPIError(http.StatusInternalServerError, nil)
	assert.Equal(t, "supabase: status 500", apiErr.Error())
}

func TestHeaders(t *testing.T) {
	h := Headers("k", "")
	assert.Equal(t, "k", h["apikey"])
	_, ok := h["Authorization"]
	assert.False(t, ok)

	h = Headers("k", "t")
	assert.Equal(t, "Bearer t", h["Authorization"])
}
