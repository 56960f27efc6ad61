package middleware

import (
	"quizbox/internal/domain"
	"quizbox/internal/service"
	"quizbox/internal/util"

	"github.com/gofiber/fiber/v2"
)

const (
	quizParam     = "quizId"
	quizLocalsKey = "quiz"
)

// LoadQuiz resolves the :quizId route parameter before the handler runs. An
// unknown id stops the chain with a QUIZ_NOT_FOUND error.
func LoadQuiz(svc service.QuizService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params(quizParam)
		// Ids are ULIDs; anything else cannot exist.
		if !util.IsULID(id) {
			return domain.NewQuizNotFoundError(id)
		}

		quiz, err := svc.GetQuiz(c.UserContext(), id)
		if err != nil {
			return err
		}
		c.Locals(quizLocalsKey, quiz)
		return c.Next()
	}
}

// QuizFrom returns the quiz resolved by LoadQuiz, or nil when the route has
// no loader.
func QuizFrom(c *fiber.Ctx) *domain.Quiz {
	quiz, _ := c.Locals(quizLocalsKey).(*domain.Quiz)
	return quiz
}
