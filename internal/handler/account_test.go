package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/deadpan/internal/handler"
	"github.com/user/deadpan/internal/middleware"
	"github.com/user/deadpan/internal/utils"
	"golang.org/x/oauth2"
)

// browser 在多次请求之间保存 Cookie
type browser struct {
	s       *testServer
	cookies map[string]*http.Cookie
}

func newBrowser(s *testServer) *browser {
	return &browser{s: s, cookies: map[string]*http.Cookie{}}
}

func (b *browser) post(t *testing.T, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return b.send(t, http.MethodPost, path, body)
}

func (b *browser) get(t *testing.T, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return b.send(t, http.MethodGet, path, "")
}

func (b *browser) send(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.s.engine.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		env = decode[envelope](t, w.Body.Bytes())
	}
	return w, env
}

const registerBody = `{"nickname":"Ghost","email":"ghost@example.com","password":"secret1","confirm_password":"secret1"}`

func TestRegisterSignsIn(t *testing.T) {
	s := newTestServer(t)
	b := newBrowser(s)

	w, env := b.post(t, "/account/register", registerBody)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Contains(t, b.cookies, middleware.TokenCookie)

	w, env = b.post(t, "/account/register", registerBody)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	b := newBrowser(s)

	w, env := b.post(t, "/account/register",
		`{"nickname":"Gh","email":"not-an-email","password":"secret1","confirm_password":"other"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "nickname")
	assert.Contains(t, env.Errors, "email")
	assert.Contains(t, env.Errors, "confirm_password")
	assert.NotContains(t, b.cookies, middleware.TokenCookie)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	_, _ = newBrowser(s).post(t, "/account/register", registerBody)

	b := newBrowser(s)
	w, _ := b.post(t, "/account/login", `{"email":"ghost@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, b.cookies, middleware.TokenCookie)

	w, env := b.post(t, "/account/login", `{"email":"GHOST@example.com","password":"secret1","redirect":"//evil.example"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"redirect":"/"`)
	assert.Contains(t, b.cookies, middleware.TokenCookie)

	w, _ = b.post(t, "/account/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, b.cookies, middleware.TokenCookie)
}

func TestLoginWithTwoFactor(t *testing.T) {
	s := newTestServer(t)
	_, _ = newBrowser(s).post(t, "/account/register", registerBody)

	user, err := s.repos.User.FindByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	require.NoError(t, s.repos.User.SetTwoFactor(context.Background(), user.ID, true))

	b := newBrowser(s)
	w, env := b.post(t, "/account/login", `{"email":"ghost@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "requires_verification")
	assert.NotContains(t, b.cookies, middleware.TokenCookie)
	code := s.sender.codes[user.ID]
	require.Len(t, code, 6)

	w, _ = b.post(t, "/account/verify-code", `{"code":"000000x"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = b.post(t, "/account/verify-code", `{"code":"`+code+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, b.cookies, middleware.TokenCookie)

	// 验证码只能使用一次，且待验证用户已从 Session 移除
	w, _ = b.post(t, "/account/verify-code", `{"code":"`+code+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyCodeWithoutPendingLogin(t *testing.T) {
	s := newTestServer(t)
	w, _ := newBrowser(s).post(t, "/account/verify-code", `{"code":"123456"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// fakeGoogle 模拟授权码兑换与 userinfo 接口
func fakeGoogle(t *testing.T, sub, email string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-" + sub,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-"+sub {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sub":            sub,
			"email":          email,
			"email_verified": true,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newGoogleServer(t *testing.T, sub, email string) *testServer {
	t.Helper()
	google := fakeGoogle(t, sub, email)
	return newTestServerWith(t, func(h *handler.Handler) {
		h.OAuth = &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost/account/external-login/callback",
			Endpoint: oauth2.Endpoint{
				AuthURL:   google.URL + "/auth",
				TokenURL:  google.URL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		}
		h.UserInfoURL = google.URL + "/userinfo"
		h.UserInfoClient = utils.NewHTTPClient(utils.HTTPClientConfig{Name: "google-test"})
	})
}

// startExternalLogin 发起授权并返回回调地址
func startExternalLogin(t *testing.T, b *browser) string {
	t.Helper()
	w, _ := b.get(t, "/account/external-login?redirect=/profile")
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	return "/account/external-login/callback?code=abc&state=" + url.QueryEscape(state)
}

func TestExternalLogin(t *testing.T) {
	s := newGoogleServer(t, "g-1", "walker@example.com")
	b := newBrowser(s)

	w, _ := b.get(t, startExternalLogin(t, b))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile", w.Header().Get("Location"))
	assert.Contains(t, b.cookies, middleware.TokenCookie)

	user, err := s.repos.User.FindByLogin(context.Background(), "Google", "g-1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "walker@example.com", user.Email)
}

func TestExternalLoginRejectsBadState(t *testing.T) {
	s := newGoogleServer(t, "g-1", "walker@example.com")
	b := newBrowser(s)
	startExternalLogin(t, b)

	w, _ := b.get(t, "/account/external-login/callback?code=abc&state=forged")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, b.cookies, middleware.TokenCookie)
}

func TestExternalLoginWithTwoFactor(t *testing.T) {
	s := newGoogleServer(t, "g-7", "ghost@example.com")
	_, _ = newBrowser(s).post(t, "/account/register", registerBody)
	user, err := s.repos.User.FindByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	require.NoError(t, s.repos.User.SetTwoFactor(context.Background(), user.ID, true))

	b := newBrowser(s)
	w, env := b.get(t, startExternalLogin(t, b))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "requires_verification")
	assert.NotContains(t, b.cookies, middleware.TokenCookie)

	code := s.sender.codes[user.ID]
	require.Len(t, code, 6)
	w, _ = b.post(t, "/account/verify-code", `{"code":"`+code+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, b.cookies, middleware.TokenCookie)
}
