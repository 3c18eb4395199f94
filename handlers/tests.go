package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"selfcheck/common"
	"selfcheck/logging"
	"selfcheck/models"
)

type TestService interface {
	Submit(ctx context.Context, userID uuid.UUID, testType string, score int) (*models.TestResult, error)
	ListHistory(ctx context.Context, userID uuid.UUID) ([]models.TestResult, error)
	GetLatestStatus(ctx context.Context, userID uuid.UUID, testType string) (models.TestStatus, error)
}

type TestHandler struct {
	tests TestService
	log   logging.Logger
}

func NewTestHandler(tests TestService, log logging.Logger) *TestHandler {
	return &TestHandler{tests: tests, log: log}
}

type saveTestRequest struct {
	TestType string     `json:"test_type" form:"test_type"`
	Score    flexNumber `json:"score" form:"score"`
}

func (h *TestHandler) SaveTest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	var req saveTestRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, h.log, common.Validation("invalid request body"))
		return
	}
	score, ok := req.Score.Int()
	if !ok {
		writeError(c, h.log, common.Validation("score must be a whole number"))
		return
	}

	result, err := h.tests.Submit(c.Request.Context(), userID, req.TestType, score)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "result saved", "result": result})
}

func (h *TestHandler) MyTests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	results, err := h.tests.ListHistory(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// GetTest reports only whether the cooldown for test_type is active.
func (h *TestHandler) GetTest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	status, err := h.tests.GetLatestStatus(c.Request.Context(), userID, c.Query("test_type"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
