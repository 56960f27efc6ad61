package router

import (
	"quizbox/internal/config"
	"quizbox/internal/domain"
	"quizbox/internal/handler"
	"quizbox/internal/middleware"
	"quizbox/internal/service"
	"quizbox/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
)

// Dependencies are the collaborators the web app is built from.
type Dependencies struct {
	QuizService       service.QuizService
	RandomPlayService service.RandomPlayService
	Cache             domain.Cache
	SessionStore      *fibersession.Store
	Views             fiber.Views
}

// New builds the fiber app with its middleware chain and routes.
func New(cfg config.ServerConfig, deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "quizbox",
		Views:                 deps.Views,
		ErrorHandler:          middleware.ErrorHandler(),
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		DisableStartupMessage: true,
	})

	healthHandler := handler.NewHealthHandler(deps.QuizService, deps.Cache)
	app.Get("/healthz", healthHandler.Check)

	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(recover.New())
	app.Use(session.Middleware(deps.SessionStore))

	quizHandler := handler.NewQuizHandler(deps.QuizService, deps.RandomPlayService)
	loadQuiz := middleware.LoadQuiz(deps.QuizService)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/quizzes")
	})

	quizzes := app.Group("/quizzes")
	quizzes.Get("/", quizHandler.Index)
	quizzes.Post("/", quizHandler.Create)
	// Static segments first so they are never taken for a :quizId.
	quizzes.Get("/new", quizHandler.New)
	quizzes.Get("/randomplay", quizHandler.RandomPlay)

	quizzes.Get("/:quizId", loadQuiz, quizHandler.Show)
	quizzes.Put("/:quizId", loadQuiz, quizHandler.Update)
	quizzes.Delete("/:quizId", loadQuiz, quizHandler.Destroy)
	quizzes.Post("/:quizId", loadQuiz, quizHandler.MethodOverride)
	quizzes.Get("/:quizId/edit", loadQuiz, quizHandler.Edit)
	quizzes.Get("/:quizId/play", loadQuiz, quizHandler.Play)
	quizzes.Get("/:quizId/check", loadQuiz, quizHandler.Check)
	quizzes.Get("/:quizId/randomcheck", loadQuiz, quizHandler.RandomCheck)

	return app
}
