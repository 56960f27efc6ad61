package middleware

import (
	"errors"
	"net/http"
	"quizbox/internal/domain"
	"quizbox/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	errorView   = "error"
	errorLayout = "layouts/main"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
	Status  int                      `json:"status"`
	Details map[string]interface{}   `json:"details,omitempty"`
	Errors  []domain.ValidationError `json:"errors,omitempty"`
}

// ErrorHandler is the fiber error handler of the web app. It renders the
// error page, or JSON when the client prefers application/json.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		response := toErrorResponse(c, err)

		if c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
			return c.Status(response.Status).JSON(response)
		}

		c.Status(response.Status)
		renderErr := c.Render(errorView, fiber.Map{
			"Title":   http.StatusText(response.Status),
			"Status":  response.Status,
			"Code":    response.Code,
			"Message": response.Message,
			"Errors":  response.Errors,
		}, errorLayout)
		if renderErr != nil {
			logger.Get().Error("Failed to render error page", zap.Error(renderErr))
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			return c.Status(response.Status).SendString(response.Message)
		}
		return nil
	}
}

func toErrorResponse(c *fiber.Ctx, err error) ErrorResponse {
	log := logger.Get().With(
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("request_id", RequestIDFrom(c)),
	)

	if validationErrs, ok := domain.AsValidationErrors(err); ok {
		log.Warn("Validation errors occurred", zap.Int("error_count", len(validationErrs)))
		return ErrorResponse{
			Code:    string(domain.CodeValidation),
			Message: "Request validation failed",
			Status:  http.StatusBadRequest,
			Errors:  validationErrs,
		}
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		status := mapDomainErrorToHTTPStatus(domainErr)
		fields := []zap.Field{
			zap.String("code", string(domainErr.Code)),
			zap.String("message", domainErr.Message),
			zap.Int("status", status),
			zap.Error(domainErr.Cause),
		}
		if status >= http.StatusInternalServerError {
			log.Error("Domain error occurred", fields...)
		} else {
			log.Warn("Domain error occurred", fields...)
		}
		return ErrorResponse{
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Status:  status,
			Details: domainErr.Context,
		}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		log.Warn("Fiber error occurred", zap.Int("code", fiberErr.Code), zap.String("message", fiberErr.Message))
		return ErrorResponse{
			Code:    "HTTP_ERROR",
			Message: fiberErr.Message,
			Status:  fiberErr.Code,
		}
	}

	log.Error("Unknown error occurred", zap.Error(err))
	return ErrorResponse{
		Code:    string(domain.CodeInternal),
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}
}

// mapDomainErrorToHTTPStatus maps domain errors to HTTP status codes
func mapDomainErrorToHTTPStatus(err *domain.DomainError) int {
	switch err.Code {
	case domain.CodeNotFound, domain.CodeQuizNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidInput, domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeCache:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
