package domain

import (
	"strings"
	"time"
)

// Quiz is a question/answer pair persisted as a single record.
type Quiz struct {
	ID        string
	Question  string
	Answer    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewQuiz creates a Quiz that has not been stored yet. The repository assigns
// the ID and timestamps.
func NewQuiz(question, answer string) *Quiz {
	return &Quiz{
		Question: question,
		Answer:   answer,
	}
}

// IsNew reports whether the quiz has not been persisted.
func (q *Quiz) IsNew() bool {
	return q.ID == ""
}

// Check grades a player answer against the quiz answer.
func (q *Quiz) Check(answer string) bool {
	return Normalize(answer) == Normalize(q.Answer)
}

// Normalize lowercases s and trims leading and trailing whitespace.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QuizFilter narrows the set of quizzes a repository call works on.
type QuizFilter struct {
	// Search keeps quizzes whose question contains it, ignoring case.
	Search string
	// ExcludeIDs drops quizzes with these ids.
	ExcludeIDs []string
}
