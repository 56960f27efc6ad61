package handler

import (
	"errors"
	"quizbox/internal/domain"
	"quizbox/internal/session"

	"github.com/gofiber/fiber/v2"
)

const layout = "layouts/main"

// render renders view inside the main layout. Queued flash notices are
// handed to the template and cleared.
func render(c *fiber.Ctx, view string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Flashes"] = session.PopFlashes(c)
	return c.Render(view, data, layout)
}

// errorMessage is the user-facing text of err.
func errorMessage(err error) string {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

// flashValidationErrors queues the form error header followed by one notice
// per violated field.
func flashValidationErrors(c *fiber.Ctx, errs domain.ValidationErrors) {
	session.AddFlash(c, session.FlashError, "There are errors in the form:")
	for _, e := range errs {
		session.AddFlash(c, session.FlashError, e.Message)
	}
}
