package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"selfcheck/common"
	"selfcheck/dbx"
	"selfcheck/logging"
	"selfcheck/models"
	"selfcheck/repository"
)

type ProfileInput struct {
	FullName  string
	BirthDate string
	Weight    *float64
	Height    *float64
}

type ProfileService struct {
	repos repository.Manager
	db    dbx.DBTX
	log   logging.Logger
}

func NewProfileService(repos repository.Manager, db dbx.DBTX, log logging.Logger) *ProfileService {
	return &ProfileService{repos: repos, db: db, log: log}
}

// SaveProfile stores the profile once. Any later call for the same user is
// a conflict, whatever the values.
func (s *ProfileService) SaveProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) error {
	p, err := models.NewProfile(userID, in.FullName, in.BirthDate, in.Weight, in.Height)
	if err != nil {
		return err
	}

	profiles := s.repos.Profiles(s.db)

	exists, err := profiles.Exists(ctx, userID)
	if err != nil {
		return common.Storage("check profile", err)
	}
	if exists {
		return common.Conflict("profile information has already been saved")
	}

	if err := profiles.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return common.Conflict("profile information has already been saved")
		}
		return common.Storage("save profile", err)
	}

	s.log.Info(ctx, "profile saved", "user_id", userID)
	return nil
}

// GetProfile returns the saved profile, or a view with every field null.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (models.ProfileView, error) {
	p, err := s.repos.Profiles(s.db).GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.ProfileView{}, nil
		}
		return models.ProfileView{}, common.Storage("load profile", err)
	}
	return p.View(), nil
}
