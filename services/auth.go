// Package services holds the business rules: credentials, test submission
// with its cooldown, and the write-once profile.
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
	"selfcheck/mailer"
	"selfcheck/models"
	"selfcheck/repository"
	"selfcheck/utils"
)

const mailTimeout = 5 * time.Second

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthService struct {
	repos      repository.Manager
	db         dbx.DBTX
	mailer     mailer.Mailer
	log        logging.Logger
	bcryptCost int
}

func NewAuthService(repos repository.Manager, db dbx.DBTX, m mailer.Mailer, log logging.Logger, bcryptCost int) *AuthService {
	return &AuthService{repos: repos, db: db, mailer: m, log: log, bcryptCost: bcryptCost}
}

// Register creates a user and returns it without the password hash. A
// failing welcome email is logged and does not fail the registration.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if username == "" || email == "" || in.Password == "" {
		return nil, common.Validation("username, email and password are required")
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, common.Validation("invalid email address")
	}
	if err := utils.ValidatePassword(in.Password); err != nil {
		return nil, common.Validation(err.Error())
	}

	users := s.repos.Users(s.db)

	taken, err := users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, common.Storage("check user uniqueness", err)
	}
	if taken {
		return nil, common.Conflict("username or email already exists")
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, common.Storage("hash password", err)
	}

	user, err := users.Create(ctx, &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, common.Conflict("username or email already exists")
		}
		return nil, common.Storage("create user", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)

	mailCtx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	if err := s.mailer.SendWelcome(mailCtx, user.Email, user.Username); err != nil {
		s.log.Warn(ctx, "welcome email failed", "user_id", user.ID, "error", err)
	}

	user.PasswordHash = nil
	return user, nil
}

// Login checks credentials. An unknown username is ErrNotFound and a wrong
// password is ErrUnauthorized; the HTTP layer reports both the same way.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, common.Validation("username and password are required")
	}

	user, err := s.repos.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, common.NotFound("invalid credentials")
		}
		return nil, common.Storage("load user", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, common.Unauthorized("invalid credentials")
	}

	user.PasswordHash = nil
	return user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, common.NotFound("user not found")
		}
		return nil, common.Storage("load user", err)
	}
	user.PasswordHash = nil
	return user, nil
}
