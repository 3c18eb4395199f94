package models

import (
	"time"

	"github.com/google/uuid"
)

// TestResult is one scored submission. Rows are append-only.
type TestResult struct {
	ID         int64     `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"-"`
	TestType   string    `db:"test_type" json:"test_type"`
	Score      int       `db:"score" json:"score"`
	ResultText string    `db:"result_text" json:"result_text"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// TestStatus answers whether a test type is still in its cooldown window.
// The verdict of the previous attempt is intentionally absent.
type TestStatus struct {
	Exists          bool       `json:"exists"`
	NextAvailableAt *time.Time `json:"next_available_at,omitempty"`
}
