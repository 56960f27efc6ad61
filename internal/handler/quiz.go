package handler

import (
	"quizbox/internal/domain"
	"quizbox/internal/dto"
	"quizbox/internal/logger"
	"quizbox/internal/middleware"
	"quizbox/internal/service"
	"quizbox/internal/session"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	msgCreated      = "Quiz created successfully."
	msgEdited       = "Quiz edited successfully."
	msgDeleted      = "Quiz deleted successfully."
	msgCreateFailed = "Error creating a new Quiz: "
	msgEditFailed   = "Error editing the Quiz: "
	msgDeleteFailed = "Error deleting the Quiz: "
)

// QuizHandler serves the quiz pages. Routes with a :quizId parameter expect
// middleware.LoadQuiz to have resolved the quiz.
type QuizHandler struct {
	quizzes    service.QuizService
	randomPlay service.RandomPlayService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(quizzes service.QuizService, randomPlay service.RandomPlayService) *QuizHandler {
	return &QuizHandler{
		quizzes:    quizzes,
		randomPlay: randomPlay,
	}
}

// Index handles GET /quizzes
func (h *QuizHandler) Index(c *fiber.Ctx) error {
	var query dto.IndexQuery
	if err := c.QueryParser(&query); err != nil {
		return domain.NewInvalidInputError("invalid query string")
	}

	quizzes, err := h.quizzes.ListQuizzes(c.UserContext(), query.Search)
	if err != nil {
		return err
	}

	return render(c, "quizzes/index", fiber.Map{
		"Title":   "Quizzes",
		"Quizzes": dto.NewQuizViews(quizzes),
		"Search":  query.Search,
	})
}

// Show handles GET /quizzes/:quizId
func (h *QuizHandler) Show(c *fiber.Ctx) error {
	quiz := middleware.QuizFrom(c)
	return render(c, "quizzes/show", fiber.Map{
		"Title": "Quiz",
		"Quiz":  dto.NewQuizView(quiz),
	})
}

// New handles GET /quizzes/new
func (h *QuizHandler) New(c *fiber.Ctx) error {
	return render(c, "quizzes/new", fiber.Map{
		"Title": "New Quiz",
		"Quiz":  dto.QuizView{},
	})
}

// Create handles POST /quizzes
func (h *QuizHandler) Create(c *fiber.Ctx) error {
	var form dto.QuizForm
	if err := c.BodyParser(&form); err != nil {
		return domain.NewInvalidInputError("invalid form body")
	}

	quiz := form.ToQuiz()
	if err := h.quizzes.CreateQuiz(c.UserContext(), quiz); err != nil {
		if verrs, ok := domain.AsValidationErrors(err); ok {
			flashValidationErrors(c, verrs)
			return render(c, "quizzes/new", fiber.Map{
				"Title": "New Quiz",
				"Quiz":  dto.NewQuizView(quiz),
			})
		}
		session.AddFlash(c, session.FlashError, msgCreateFailed+errorMessage(err))
		return err
	}

	session.AddFlash(c, session.FlashSuccess, msgCreated)
	return c.Redirect("/quizzes/" + quiz.ID)
}

// Edit handles GET /quizzes/:quizId/edit
func (h *QuizHandler) Edit(c *fiber.Ctx) error {
	return render(c, "quizzes/edit", fiber.Map{
		"Title": "Edit Quiz",
		"Quiz":  dto.NewQuizView(middleware.QuizFrom(c)),
	})
}

// Update handles PUT /quizzes/:quizId
func (h *QuizHandler) Update(c *fiber.Ctx) error {
	var form dto.QuizForm
	if err := c.BodyParser(&form); err != nil {
		return domain.NewInvalidInputError("invalid form body")
	}

	quiz := *middleware.QuizFrom(c)
	form.ApplyTo(&quiz)

	if err := h.quizzes.UpdateQuiz(c.UserContext(), &quiz); err != nil {
		if verrs, ok := domain.AsValidationErrors(err); ok {
			flashValidationErrors(c, verrs)
			return render(c, "quizzes/edit", fiber.Map{
				"Title": "Edit Quiz",
				"Quiz":  dto.NewQuizView(&quiz),
			})
		}
		session.AddFlash(c, session.FlashError, msgEditFailed+errorMessage(err))
		return err
	}

	session.AddFlash(c, session.FlashSuccess, msgEdited)
	return c.Redirect("/quizzes/" + quiz.ID)
}

// Destroy handles DELETE /quizzes/:quizId
func (h *QuizHandler) Destroy(c *fiber.Ctx) error {
	quiz := middleware.QuizFrom(c)
	if err := h.quizzes.DeleteQuiz(c.UserContext(), quiz); err != nil {
		session.AddFlash(c, session.FlashError, msgDeleteFailed+errorMessage(err))
		return err
	}

	session.AddFlash(c, session.FlashSuccess, msgDeleted)
	return c.Redirect("/quizzes")
}

// MethodOverride handles POST /quizzes/:quizId from HTML forms, which cannot
// send PUT or DELETE. The real verb comes in the _method field.
func (h *QuizHandler) MethodOverride(c *fiber.Ctx) error {
	method := strings.ToUpper(strings.TrimSpace(c.FormValue("_method")))
	switch method {
	case fiber.MethodPut, fiber.MethodPatch:
		return h.Update(c)
	case fiber.MethodDelete:
		return h.Destroy(c)
	default:
		logger.Get().Debug("Rejected form method override", zap.String("method", method))
		return fiber.ErrMethodNotAllowed
	}
}
