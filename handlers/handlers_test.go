package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"selfcheck/models"
	"selfcheck/services"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockAuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type mockTestService struct {
	mock.Mock
}

func (m *mockTestService) Submit(ctx context.Context, userID uuid.UUID, testType string, score int) (*models.TestResult, error) {
	args := m.Called(ctx, userID, testType, score)
	result, _ := args.Get(0).(*models.TestResult)
	return result, args.Error(1)
}

func (m *mockTestService) ListHistory(ctx context.Context, userID uuid.UUID) ([]models.TestResult, error) {
	args := m.Called(ctx, userID)
	results, _ := args.Get(0).([]models.TestResult)
	return results, args.Error(1)
}

func (m *mockTestService) GetLatestStatus(ctx context.Context, userID uuid.UUID, testType string) (models.TestStatus, error) {
	args := m.Called(ctx, userID, testType)
	return args.Get(0).(models.TestStatus), args.Error(1)
}

type mockProfileService struct {
	mock.Mock
}

func (m *mockProfileService) SaveProfile(ctx context.Context, userID uuid.UUID, in services.ProfileInput) error {
	args := m.Called(ctx, userID, in)
	return args.Error(0)
}

func (m *mockProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (models.ProfileView, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.ProfileView), args.Error(1)
}

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) Create(ctx context.Context, userID, userAgent, ip string) (*models.Session, error) {
	args := m.Called(ctx, userID, userAgent, ip)
	s, _ := args.Get(0).(*models.Session)
	return s, args.Error(1)
}

func (m *mockSessionStore) Get(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	s, _ := args.Get(0).(*models.Session)
	return s, args.Error(1)
}

func (m *mockSessionStore) Touch(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockSessionStore) Delete(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

// setupTestRouter trusts no proxy, as the server does by default.
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	_ = router.SetTrustedProxies(nil)
	return router
}

// withSession stands in for the session gate.
func withSession(userID uuid.UUID, token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxUserID, userID)
		c.Set(ctxSessionToken, token)
		c.Next()
	}
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decodeBody(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}
