package validation

import (
	"fmt"
	"quizbox/internal/domain"
	"strings"
	"unicode/utf8"
)

const (
	maxQuestionLength = 1000
	maxAnswerLength   = 255
	maxSearchLength   = 100
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateQuiz checks the rules a quiz must satisfy before it is persisted.
// Every violated rule yields one error, at most one per field.
func (v *Validator) ValidateQuiz(quiz *domain.Quiz) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(quiz.Question) == "" {
		errors = append(errors, domain.NewMissingFieldError("question", "Question"))
	} else if utf8.RuneCountInString(quiz.Question) > maxQuestionLength {
		errors = append(errors, tooLong("question", "Question", maxQuestionLength))
	}

	if strings.TrimSpace(quiz.Answer) == "" {
		errors = append(errors, domain.NewMissingFieldError("answer", "Answer"))
	} else if utf8.RuneCountInString(quiz.Answer) > maxAnswerLength {
		errors = append(errors, tooLong("answer", "Answer", maxAnswerLength))
	}

	return errors
}

// ValidateSearch checks the index search term.
func (v *Validator) ValidateSearch(search string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if utf8.RuneCountInString(search) > maxSearchLength {
		errors = append(errors, tooLong("search", "Search", maxSearchLength))
	}
	return errors
}

func tooLong(field, label string, max int) domain.ValidationError {
	return domain.ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s is too long (maximum %d characters).", label, max),
	}
}
