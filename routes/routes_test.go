package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfcheck/config"
	"selfcheck/handlers"
	"selfcheck/logging"
	"selfcheck/mailer"
	"selfcheck/repository"
	"selfcheck/scoring"
	"selfcheck/services"
	"selfcheck/sessions"
)

type testServer struct {
	router *gin.Engine
	cookie *http.Cookie
}

func newTestServer(t *testing.T, publicDir string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := logging.Discard()
	repos := repository.NewMemoryManager()
	store := sessions.NewRedisStore(rdb, time.Hour)

	auth := services.NewAuthService(repos, nil, mailer.NewLogMailer(log), log, 4)
	tests := services.NewTestService(repos, nil, repos, scoring.Default(), log, services.DefaultCooldown)
	profiles := services.NewProfileService(repos, nil, log)

	router := gin.New()
	router.Use(handlers.RequestLogger(log))
	err := Setup(router, Dependencies{
		Auth:      handlers.NewAuthHandler(auth, store, log, handlers.CookieOptions{MaxAge: time.Hour}),
		Tests:     handlers.NewTestHandler(tests, log),
		Profile:   handlers.NewProfileHandler(profiles, log),
		Health:    handlers.NewHealthHandler(nil, rdb),
		Sessions:  store,
		Redis:     rdb,
		RateLimit: config.RateLimitConfig{Enabled: true, Capacity: 50, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"},
		PublicDir: publicDir,
		Log:       log,
	})
	require.NoError(t, err)
	return &testServer{router: router}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == sessions.CookieName {
			if c.MaxAge < 0 {
				s.cookie = nil
			} else {
				s.cookie = c
			}
		}
	}
	return w
}

func TestEndToEnd_TestSubmissionFlow(t *testing.T) {
	srv := newTestServer(t, "")

	w := srv.do(t, http.MethodPost, "/auth/register", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = srv.do(t, http.MethodPost, "/auth/register", map[string]string{
		"username": "alice", "email": "other@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodPost, "/tests/save-test", map[string]any{"test_type": "depression", "score": 22})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "alice", "password": "wrong1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "alice", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, srv.cookie)

	w = srv.do(t, http.MethodGet, "/session-user", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"alice"}`, w.Body.String())

	w = srv.do(t, http.MethodGet, "/tests/get-test?test_type=depression", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exists":false}`, w.Body.String())

	w = srv.do(t, http.MethodPost, "/tests/save-test", map[string]any{"test_type": "depression", "score": 22})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var saved struct {
		Message string `json:"message"`
		Result  struct {
			Score      int    `json:"score"`
			ResultText string `json:"result_text"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, 22, saved.Result.Score)
	assert.Equal(t, "high probability of depression", saved.Result.ResultText)

	w = srv.do(t, http.MethodPost, "/save-test", map[string]any{"test_type": "depression", "score": 3})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodGet, "/tests/get-test?test_type=depression", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"exists":true`)

	w = srv.do(t, http.MethodGet, "/tests/my-tests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history, 1)

	w = srv.do(t, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, srv.cookie)

	w = srv.do(t, http.MethodGet, "/my-tests", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEndToEnd_ProfileIsWriteOnce(t *testing.T) {
	srv := newTestServer(t, "")

	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/register", map[string]string{
		"username": "bob", "email": "b@x.com", "password": "secret1",
	}).Code)
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/login", map[string]string{
		"username": "bob", "password": "secret1",
	}).Code)

	w := srv.do(t, http.MethodGet, "/info/user-info", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"nome_completo":null,"nascimento":null,"peso":null,"altura":null}`, w.Body.String())

	w = srv.do(t, http.MethodPost, "/info/save-info", map[string]any{
		"nome_completo": "Bob Smith", "nascimento": "1985-02-10", "peso": "80", "altura": 1.8,
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = srv.do(t, http.MethodPost, "/save-info", map[string]any{
		"nome_completo": "Robert Smith", "nascimento": "1985-02-10",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodGet, "/user-info", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"nome_completo":"Bob Smith","nascimento":"1985-02-10","peso":80,"altura":1.8}`, w.Body.String())
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dashboard.html"), []byte("<h1>dashboard</h1>"), 0o644))

	srv := newTestServer(t, dir)

	w := srv.do(t, http.MethodGet, "/dashboard.html", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dashboard")

	w = srv.do(t, http.MethodGet, "/missing.html", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodDelete, "/anything", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"not found"}`, w.Body.String())
}

func TestHealthzReportsDatabaseDown(t *testing.T) {
	srv := newTestServer(t, "")

	w := srv.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"database":false,"redis":true}`, w.Body.String())
}
