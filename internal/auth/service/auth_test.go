package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lk2023060901/model-catalog/internal/auth"
	"github.com/lk2023060901/model-catalog/internal/auth/biz"
	"github.com/lk2023060901/model-catalog/internal/auth/middleware"
	"github.com/lk2023060901/model-catalog/internal/auth/store"
	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"github.com/lk2023060901/model-catalog/internal/supabase"
	"github.com/lk2023060901/model-catalog/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthClient struct {
	token       string
	confirm     bool
	rejectLogin bool
	signedOut   int
}

func (s *stubAuthClient) SignInWithPassword(ctx context.Context, email, password string) (*supabase.AuthResponse, error) {
	if s.rejectLogin {
		return nil, &supabase.APIError{Status: 400, Body: []byte(`{"error_description":"Invalid login credentials"}`)}
	}
	return &supabase.AuthResponse{AccessToken: s.token, User: json.RawMessage(`{"email":"` + email + `"}`)}, nil
}

func (s *stubAuthClient) SignUp(ctx context.Context, email, password string) (*supabase.AuthResponse, error) {
	if s.confirm {
		return &supabase.AuthResponse{User: json.RawMessage(`{"email":"` + email + `"}`)}, nil
	}
	return &supabase.AuthResponse{AccessToken: s.token}, nil
}

func (s *stubAuthClient) RefreshSession(ctx context.Context, refreshToken string) (*supabase.AuthResponse, error) {
	return nil, &supabase.APIError{Status: 400}
}

func (s *stubAuthClient) SignOut(ctx context.Context, accessToken string) error {
	s.signedOut++
	return nil
}

func testToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		Email:            "ana@example.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func setupAuthRouter(t *testing.T, client biz.AuthClient) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := store.NewMemoryStore(time.Hour)
	authUC := biz.NewAuthUseCase(client, sessions, logger.NewNop())
	cookie := &middleware.SessionCookie{Name: "mc_session", MaxAge: time.Hour}
	svc := NewAuthService(authUC, cookie, logger.NewNop())

	router := gin.New()
	require.NoError(t, web.Install(router))
	svc.RegisterPages(router, Limiters{})
	svc.RegisterRoutes(router.Group("/api/v1"), middleware.BearerAuth(logger.NewNop()), Limiters{})
	return router, sessions
}

func postForm(router *gin.Engine, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginPage(t *testing.T) {
	router, _ := setupAuthRouter(t, &stubAuthClient{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login?expired=1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="loginForm"`)
	assert.Contains(t, w.Body.String(), "Session expired")
}

func TestLoginPage_NotConfigured(t *testing.T) {
	router, _ := setupAuthRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Contains(t, w.Body.String(), "not configured")
	assert.Contains(t, w.Body.String(), "disabled")
}

func TestLoginSubmit(t *testing.T) {
	token := testToken(t)
	router, sessions := setupAuthRouter(t, &stubAuthClient{token: token})

	w := postForm(router, "/login", url.Values{"email": {" ana@example.com "}, "password": {"secret"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, DashboardPath, w.Header().Get("Location"))

	sid := findCookie(w, "mc_session")
	require.NotNil(t, sid)
	session, err := sessions.Load(context.Background(), sid.Value)
	require.NoError(t, err)
	assert.Equal(t, token, session.AccessToken())
	require.NotNil(t, findCookie(w, web.FlashCookie))

	// 已登录访问登录页直接跳转
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(sid)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, DashboardPath, w.Header().Get("Location"))
}

func TestLoginSubmit_Errors(t *testing.T) {
	router, _ := setupAuthRouter(t, &stubAuthClient{rejectLogin: true})

	w := postForm(router, "/login", url.Values{"email": {"ana@example.com"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email and password are required")

	w = postForm(router, "/login", url.Values{"email": {"ana@example.com"}, "password": {"bad"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid login credentials")
	assert.Contains(t, w.Body.String(), `value="ana@example.com"`)
}

func TestRegisterSubmit(t *testing.T) {
	t.Run("confirmation pending", func(t *testing.T) {
		router, _ := setupAuthRouter(t, &stubAuthClient{confirm: true})
		w := postForm(router, "/register", url.Values{
			"email": {"new@example.com"}, "password": {"secret1"}, "confirm_password": {"secret1"},
		})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, middleware.LoginPath, w.Header().Get("Location"))
	})

	t.Run("logged in", func(t *testing.T) {
		router, _ := setupAuthRouter(t, &stubAuthClient{token: testToken(t)})
		w := postForm(router, "/register", url.Values{
			"email": {"new@example.com"}, "password": {"secret1"}, "confirm_password": {"secret1"},
		})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, DashboardPath, w.Header().Get("Location"))
	})

	t.Run("mismatch", func(t *testing.T) {
		router, _ := setupAuthRouter(t, &stubAuthClient{})
		w := postForm(router, "/register", url.Values{
			"email": {"new@example.com"}, "password": {"secret1"}, "confirm_password": {"secret2"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Password and confirmation do not match")
	})
}

func TestLogoutSubmit(t *testing.T) {
	client := &stubAuthClient{token: testToken(t)}
	router, sessions := setupAuthRouter(t, client)

	w := postForm(router, "/login", url.Values{"email": {"ana@example.com"}, "password": {"secret"}})
	sid := findCookie(w, "mc_session")
	require.NotNil(t, sid)

	w = postForm(router, "/logout", nil, sid)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, middleware.LoginPath, w.Header().Get("Location"))
	assert.Equal(t, 1, client.signedOut)

	_, err := sessions.Load(context.Background(), sid.Value)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestAPI_LoginAndMe(t *testing.T) {
	token := testToken(t)
	router, _ := setupAuthRouter(t, &stubAuthClient{token: token})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"ana@example.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Code int           `json:"code"`
		Data TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, token, body.Data.AccessToken)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"u1"`)
	assert.Contains(t, w.Body.String(), `"email":"ana@example.com"`)
}

func TestAPI_Register(t *testing.T) {
	router, _ := setupAuthRouter(t, &stubAuthClient{confirm: true})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"email":"new@example.com","password":"secret1","confirm_password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"confirmation_required":true`)
}

func TestAPI_LoginRejected(t *testing.T) {
	router, _ := setupAuthRouter(t, &stubAuthClient{rejectLogin: true})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"ana@example.com","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid login credentials")
}
