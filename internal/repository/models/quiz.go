package models

import "time"

// Quiz is a row of the quizzes table.
type Quiz struct {
	ID        string    `db:"id"`         // ULID
	Question  string    `db:"question"`   // Question text shown to the player
	Answer    string    `db:"answer"`     // Expected answer, graded case-insensitively
	CreatedAt time.Time `db:"created_at"` // Timestamp of creation
	UpdatedAt time.Time `db:"updated_at"` // Timestamp of last update
}

// TableName returns the table backing Quiz.
func (Quiz) TableName() string {
	return "quizzes"
}
