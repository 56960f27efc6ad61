package dto

import "quizbox/internal/domain"

// QuizForm is the whitelist of fields a client may set on a quiz. Anything
// else submitted with the form is never read.
type QuizForm struct {
	Question string `form:"question" json:"question"`
	Answer   string `form:"answer" json:"answer"`
}

// ToQuiz builds an unsaved quiz from the form.
func (f QuizForm) ToQuiz() *domain.Quiz {
	return domain.NewQuiz(f.Question, f.Answer)
}

// ApplyTo copies the form fields onto quiz, leaving every other field alone.
func (f QuizForm) ApplyTo(quiz *domain.Quiz) {
	quiz.Question = f.Question
	quiz.Answer = f.Answer
}

// AnswerQuery is the player's guess, sent as ?answer=... by play, check and
// randomcheck. A missing value is the empty string.
type AnswerQuery struct {
	Answer string `query:"answer"`
}

// IndexQuery filters the quiz list.
type IndexQuery struct {
	Search string `query:"search"`
}

// QuizView is a quiz as the templates see it.
type QuizView struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// NewQuizView converts a domain quiz for rendering.
func NewQuizView(q *domain.Quiz) QuizView {
	if q == nil {
		return QuizView{}
	}
	return QuizView{
		ID:       q.ID,
		Question: q.Question,
		Answer:   q.Answer,
	}
}

// NewQuizViews converts a list of domain quizzes for rendering.
func NewQuizViews(quizzes []*domain.Quiz) []QuizView {
	views := make([]QuizView, 0, len(quizzes))
	for _, q := range quizzes {
		views = append(views, NewQuizView(q))
	}
	return views
}

// RandomPlayRound is the outcome of drawing the next random quiz. Quiz is nil
// when the run is exhausted; Score is then the final score.
type RandomPlayRound struct {
	Quiz      *domain.Quiz
	Score     int
	Exhausted bool
}

// RandomCheckResult is the outcome of grading a random play answer.
type RandomCheckResult struct {
	Quiz   *domain.Quiz
	Answer string
	Result bool
	Score  int
}
