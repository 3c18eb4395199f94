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

type PostgresTestResults struct {
	db dbx.DBTX
}

func NewPostgresTestResults(db dbx.DBTX) *PostgresTestResults {
	return &PostgresTestResults{db: db}
}

// Lock takes a transaction-scoped advisory lock keyed on the user and test
// type. It must run inside a transaction to have any effect.
func (r *PostgresTestResults) Lock(ctx context.Context, userID uuid.UUID, testType string) error {
	query := `SELECT pg_advisory_xact_lock(hashtext($1))`

	if _, err := r.db.ExecContext(ctx, query, userID.String()+":"+testType); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresTestResults) Latest(ctx context.Context, userID uuid.UUID, testType string) (*models.TestResult, error) {
	query :=
		`SELECT id, user_id, test_type, score, result_text, created_at FROM test_results
		 WHERE user_id = $1 AND test_type = $2
		 ORDER BY created_at DESC
		 LIMIT 1`

	res := &models.TestResult{}
	err := r.db.QueryRowContext(ctx, query, userID, testType).
		Scan(&res.ID, &res.UserID, &res.TestType, &res.Score, &res.ResultText, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	res.CreatedAt = res.CreatedAt.UTC()
	return res, nil
}

func (r *PostgresTestResults) Create(ctx context.Context, result *models.TestResult) (*models.TestResult, error) {
	query :=
		`INSERT INTO test_results (user_id, test_type, score, result_text)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		result.UserID, result.TestType, result.Score, result.ResultText).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	result.CreatedAt = result.CreatedAt.UTC()
	return result, nil
}

func (r *PostgresTestResults) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TestResult, error) {
	query :=
		`SELECT id, user_id, test_type, score, result_text, created_at FROM test_results
		 WHERE user_id = $1
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	results := make([]models.TestResult, 0)
	for rows.Next() {
		var res models.TestResult
		if err := rows.Scan(&res.ID, &res.UserID, &res.TestType, &res.Score, &res.ResultText, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		res.CreatedAt = res.CreatedAt.UTC()
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return results, nil
}
