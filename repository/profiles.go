package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"selfcheck/dbx"
	"selfcheck/models"
)

type PostgresProfiles struct {
	db dbx.DBTX
}

func NewPostgresProfiles(db dbx.DBTX) *PostgresProfiles {
	return &PostgresProfiles{db: db}
}

func (r *PostgresProfiles) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_info WHERE user_id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresProfiles) Create(ctx context.Context, p *models.Profile) error {
	query :=
		`INSERT INTO user_info (user_id, nome_completo, nascimento, peso, altura)
		 VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		p.UserID(), p.FullName(), p.BirthDate(), nullFloat(p.Weight()), nullFloat(p.Height()))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByUserID loads the profile and re-validates it through NewProfile, so a
// row that bypassed the schema checks is reported instead of returned.
func (r *PostgresProfiles) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	query :=
		`SELECT nome_completo, nascimento, peso, altura FROM user_info
		 WHERE user_id = $1`

	var (
		fullName, birthDate string
		weight, height      sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&fullName, &birthDate, &weight, &height)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	p, err := models.NewProfile(userID, fullName, birthDate, floatPtr(weight), floatPtr(height))
	if err != nil {
		return nil, fmt.Errorf("stored profile for %s is invalid: %w", userID, err)
	}
	return p, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
