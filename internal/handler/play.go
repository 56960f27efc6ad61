package handler

import (
	"quizbox/internal/domain"
	"quizbox/internal/dto"
	"quizbox/internal/middleware"
	"quizbox/internal/session"

	"github.com/gofiber/fiber/v2"
)

func answerFrom(c *fiber.Ctx) (string, error) {
	var query dto.AnswerQuery
	if err := c.QueryParser(&query); err != nil {
		return "", domain.NewInvalidInputError("invalid query string")
	}
	return query.Answer, nil
}

// Play handles GET /quizzes/:quizId/play
func (h *QuizHandler) Play(c *fiber.Ctx) error {
	answer, err := answerFrom(c)
	if err != nil {
		return err
	}
	return render(c, "quizzes/play", fiber.Map{
		"Title":  "Play",
		"Quiz":   dto.NewQuizView(middleware.QuizFrom(c)),
		"Answer": answer,
	})
}

// Check handles GET /quizzes/:quizId/check
func (h *QuizHandler) Check(c *fiber.Ctx) error {
	answer, err := answerFrom(c)
	if err != nil {
		return err
	}
	quiz := middleware.QuizFrom(c)
	return render(c, "quizzes/result", fiber.Map{
		"Title":  "Result",
		"Quiz":   dto.NewQuizView(quiz),
		"Answer": answer,
		"Result": h.quizzes.CheckAnswer(quiz, answer),
	})
}

// RandomPlay handles GET /quizzes/randomplay
func (h *QuizHandler) RandomPlay(c *fiber.Ctx) error {
	round, err := h.randomPlay.Next(c.UserContext(), session.ID(c))
	if err != nil {
		return err
	}

	if round.Exhausted {
		return render(c, "quizzes/random_nomore", fiber.Map{
			"Title": "Random Play",
			"Score": round.Score,
		})
	}
	return render(c, "quizzes/random_play", fiber.Map{
		"Title": "Random Play",
		"Quiz":  dto.NewQuizView(round.Quiz),
		"Score": round.Score,
	})
}

// RandomCheck handles GET /quizzes/:quizId/randomcheck
func (h *QuizHandler) RandomCheck(c *fiber.Ctx) error {
	answer, err := answerFrom(c)
	if err != nil {
		return err
	}

	res, err := h.randomPlay.Check(c.UserContext(), session.ID(c), middleware.QuizFrom(c), answer)
	if err != nil {
		return err
	}
	return render(c, "quizzes/random_result", fiber.Map{
		"Title":  "Random Play",
		"Quiz":   dto.NewQuizView(res.Quiz),
		"Answer": res.Answer,
		"Result": res.Result,
		"Score":  res.Score,
	})
}
