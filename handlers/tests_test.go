package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"selfcheck/common"
	"selfcheck/logging"
	"selfcheck/models"
)

func TestSaveTest(t *testing.T) {
	userID := uuid.New()
	saved := &models.TestResult{ID: 7, TestType: "depression", Score: 22, ResultText: "high probability of depression"}

	tests := []struct {
		name           string
		body           map[string]any
		setupMocks     func(*mockTestService)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "numeric score",
			body: map[string]any{"test_type": "depression", "score": 22},
			setupMocks: func(m *mockTestService) {
				m.On("Submit", mock.Anything, userID, "depression", 22).Return(saved, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "result saved",
		},
		{
			name: "score as string",
			body: map[string]any{"test_type": "depression", "score": "22"},
			setupMocks: func(m *mockTestService) {
				m.On("Submit", mock.Anything, userID, "depression", 22).Return(saved, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "result saved",
		},
		{
			name:           "fractional score",
			body:           map[string]any{"test_type": "depression", "score": 2.5},
			setupMocks:     func(*mockTestService) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "score must be a whole number",
		},
		{
			name:           "missing score",
			body:           map[string]any{"test_type": "depression"},
			setupMocks:     func(*mockTestService) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "score must be a whole number",
		},
		{
			name: "cooldown active",
			body: map[string]any{"test_type": "depression", "score": 5},
			setupMocks: func(m *mockTestService) {
				m.On("Submit", mock.Anything, userID, "depression", 5).
					Return(nil, common.Cooldown("this test can be taken again after 2025-01-31"))
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "this test can be taken again after 2025-01-31",
		},
		{
			name: "blank test type",
			body: map[string]any{"test_type": "", "score": 5},
			setupMocks: func(m *mockTestService) {
				m.On("Submit", mock.Anything, userID, "", 5).Return(nil, common.Validation("test_type is required"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "test_type is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockTestService)
			tt.setupMocks(svc)
			h := NewTestHandler(svc, logging.Discard())

			router := setupTestRouter()
			router.POST("/tests/save-test", withSession(userID, "tok"), h.SaveTest)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, jsonRequest(http.MethodPost, "/tests/save-test", tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(w)
			assert.Equal(t, tt.expectedMsg, body["message"])
			if tt.expectedStatus == http.StatusOK {
				result, ok := body["result"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "high probability of depression", result["result_text"])
				assert.NotContains(t, result, "user_id")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestSaveTest_RequiresSession(t *testing.T) {
	h := NewTestHandler(new(mockTestService), logging.Discard())

	router := setupTestRouter()
	router.POST("/tests/save-test", h.SaveTest)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/tests/save-test", map[string]any{"test_type": "x", "score": 1}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMyTests(t *testing.T) {
	userID := uuid.New()

	t.Run("lists history", func(t *testing.T) {
		svc := new(mockTestService)
		svc.On("ListHistory", mock.Anything, userID).Return([]models.TestResult{
			{ID: 2, TestType: "depression", Score: 3, ResultText: "no signs of depression"},
			{ID: 1, TestType: "anxiety", Score: 9, ResultText: "Score: 9"},
		}, nil)
		h := NewTestHandler(svc, logging.Discard())

		router := setupTestRouter()
		router.GET("/tests/my-tests", withSession(userID, "tok"), h.MyTests)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tests/my-tests", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"test_type":"depression"`)
		assert.Contains(t, w.Body.String(), `"result_text":"Score: 9"`)
	})

	t.Run("empty history is an empty array", func(t *testing.T) {
		svc := new(mockTestService)
		svc.On("ListHistory", mock.Anything, userID).Return([]models.TestResult{}, nil)
		h := NewTestHandler(svc, logging.Discard())

		router := setupTestRouter()
		router.GET("/tests/my-tests", withSession(userID, "tok"), h.MyTests)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tests/my-tests", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := new(mockTestService)
		svc.On("ListHistory", mock.Anything, userID).Return(nil, common.Storage("list results", errors.New("db gone")))
		h := NewTestHandler(svc, logging.Discard())

		router := setupTestRouter()
		router.GET("/tests/my-tests", withSession(userID, "tok"), h.MyTests)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tests/my-tests", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db gone")
	})
}

func TestGetTest(t *testing.T) {
	userID := uuid.New()
	next := time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)

	svc := new(mockTestService)
	svc.On("GetLatestStatus", mock.Anything, userID, "depression").
		Return(models.TestStatus{Exists: true, NextAvailableAt: &next}, nil)
	svc.On("GetLatestStatus", mock.Anything, userID, "anxiety").
		Return(models.TestStatus{}, nil)
	svc.On("GetLatestStatus", mock.Anything, userID, "").
		Return(models.TestStatus{}, common.Validation("test_type is required"))
	h := NewTestHandler(svc, logging.Discard())

	router := setupTestRouter()
	router.GET("/tests/get-test", withSession(userID, "tok"), h.GetTest)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tests/get-test?test_type=depression", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exists":true,"next_available_at":"2025-01-31T09:00:00Z"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tests/get-test?test_type=anxiety", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exists":false}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tests/get-test", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
