package seedmodels

import "strings"

// SeedQuiz is one quiz entry of the JSON seed file.
type SeedQuiz struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SeedSet groups quizzes under a name that is only used in the seeder's logs.
type SeedSet struct {
	Name    string     `json:"set_name"`
	Quizzes []SeedQuiz `json:"quizzes"`
}

// QuestionKey normalizes a question for duplicate detection.
func QuestionKey(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}
