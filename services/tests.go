package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"selfcheck/common"
	"selfcheck/dbx"
	"selfcheck/logging"
	"selfcheck/models"
	"selfcheck/repository"
	"selfcheck/scoring"
)

const DefaultCooldown = 30 * 24 * time.Hour

type TestService struct {
	repos    repository.Manager
	db       dbx.DBTX
	tx       dbx.Transactor
	scales   *scoring.Table
	log      logging.Logger
	cooldown time.Duration
	now      func() time.Time
}

func NewTestService(repos repository.Manager, db dbx.DBTX, tx dbx.Transactor, scales *scoring.Table, log logging.Logger, cooldown time.Duration) *TestService {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &TestService{
		repos:    repos,
		db:       db,
		tx:       tx,
		scales:   scales,
		log:      log,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *TestService) WithClock(now func() time.Time) *TestService {
	s.now = now
	return s
}

// CanSubmit is true when the user has no result of this type yet, or the
// latest one is at least one cooldown old.
func (s *TestService) CanSubmit(ctx context.Context, userID uuid.UUID, testType string) (bool, error) {
	next, err := s.nextAvailable(ctx, s.repos.TestResults(s.db), userID, testType)
	if err != nil {
		return false, err
	}
	return next == nil, nil
}

// nextAvailable returns when the cooldown for (userID, testType) ends, or nil
// if no cooldown is active.
func (s *TestService) nextAvailable(ctx context.Context, results repository.TestResultRepository, userID uuid.UUID, testType string) (*time.Time, error) {
	latest, err := results.Latest(ctx, userID, testType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, common.Storage("load latest result", err)
	}

	if s.now().Sub(latest.CreatedAt) >= s.cooldown {
		return nil, nil
	}
	next := latest.CreatedAt.Add(s.cooldown).UTC()
	return &next, nil
}

// Submit scores and stores a result. The cooldown check and the insert run
// in one transaction under a lock on (user, test type).
func (s *TestService) Submit(ctx context.Context, userID uuid.UUID, testType string, score int) (*models.TestResult, error) {
	testType = strings.TrimSpace(testType)
	if testType == "" {
		return nil, common.Validation("test_type is required")
	}
	if score < 0 {
		return nil, common.Validation("score must not be negative")
	}
	if !s.scales.Known(testType) {
		s.log.Info(ctx, "no scale for test type, storing raw score", "user_id", userID, "test_type", testType)
	}

	var saved *models.TestResult
	err := s.tx.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		results := s.repos.TestResults(tx)

		if err := results.Lock(ctx, userID, testType); err != nil {
			return common.Storage("lock test type", err)
		}

		next, err := s.nextAvailable(ctx, results, userID, testType)
		if err != nil {
			return err
		}
		if next != nil {
			return common.Cooldown("this test can be taken again after " + next.Format("2006-01-02"))
		}

		saved, err = results.Create(ctx, &models.TestResult{
			UserID:     userID,
			TestType:   testType,
			Score:      score,
			ResultText: s.scales.Evaluate(testType, score),
		})
		if err != nil {
			return common.Storage("save result", err)
		}
		return nil
	})
	if err != nil {
		var ce *common.Error
		if !errors.As(err, &ce) {
			err = common.Storage("submit test", err)
		}
		return nil, err
	}

	s.log.Info(ctx, "test submitted", "user_id", userID, "test_type", testType, "result_id", saved.ID)
	return saved, nil
}

// ListHistory returns every result of the user, newest first.
func (s *TestService) ListHistory(ctx context.Context, userID uuid.UUID) ([]models.TestResult, error) {
	results, err := s.repos.TestResults(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, common.Storage("list results", err)
	}
	return results, nil
}

// GetLatestStatus reports whether a cooldown is active for the test type.
// It never exposes the previous verdict.
func (s *TestService) GetLatestStatus(ctx context.Context, userID uuid.UUID, testType string) (models.TestStatus, error) {
	testType = strings.TrimSpace(testType)
	if testType == "" {
		return models.TestStatus{}, common.Validation("test_type is required")
	}

	next, err := s.nextAvailable(ctx, s.repos.TestResults(s.db), userID, testType)
	if err != nil {
		return models.TestStatus{}, err
	}
	return models.TestStatus{Exists: next != nil, NextAvailableAt: next}, nil
}
