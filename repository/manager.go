package repository

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"

	"selfcheck/dbx"
	"selfcheck/migrations"
)

// Manager vends repositories bound to a DBTX, so the same code runs against
// the pool or inside a transaction.
type Manager interface {
	Users(db dbx.DBTX) UserRepository
	TestResults(db dbx.DBTX) TestResultRepository
	Profiles(db dbx.DBTX) ProfileRepository
}

type PostgresManager struct{}

func NewPostgresManager() *PostgresManager {
	return &PostgresManager{}
}

func (m *PostgresManager) Users(db dbx.DBTX) UserRepository {
	return NewPostgresUsers(db)
}

func (m *PostgresManager) TestResults(db dbx.DBTX) TestResultRepository {
	return NewPostgresTestResults(db)
}

func (m *PostgresManager) Profiles(db dbx.DBTX) ProfileRepository {
	return NewPostgresProfiles(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
