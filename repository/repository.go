package repository

import (
	"context"

	"github.com/google/uuid"

	"selfcheck/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}

type TestResultRepository interface {
	// Lock serializes submissions for one (user, test type) pair until the
	// surrounding transaction ends.
	Lock(ctx context.Context, userID uuid.UUID, testType string) error
	Latest(ctx context.Context, userID uuid.UUID, testType string) (*models.TestResult, error)
	Create(ctx context.Context, result *models.TestResult) (*models.TestResult, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TestResult, error)
}

type ProfileRepository interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
	Create(ctx context.Context, profile *models.Profile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}
