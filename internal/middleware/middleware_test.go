package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quizbox/internal/domain"
	"quizbox/internal/service"
	"quizbox/internal/testutil"
	"quizbox/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newErrorApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return err })
	return app
}

func decodeErrorResponse(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestErrorHandler_JSON(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"QuizNotFound", domain.NewQuizNotFoundError("01J0"), http.StatusNotFound, "QUIZ_NOT_FOUND"},
		{"InvalidInput", domain.NewInvalidInputError("bad"), http.StatusBadRequest, "INVALID_INPUT"},
		{"Database", domain.NewDatabaseError("Failed to list quizzes", errors.New("db down")), http.StatusInternalServerError, "DATABASE_ERROR"},
		{"Cache", domain.NewCacheError("failed to load session", errors.New("redis down")), http.StatusServiceUnavailable, "CACHE_ERROR"},
		{"Validation", domain.ValidationErrors{domain.NewMissingFieldError("answer", "Answer")}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"Fiber", fiber.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "HTTP_ERROR"},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

			resp, err := newErrorApp(tt.err).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decodeErrorResponse(t, resp)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantStatus, body.Status)
		})
	}
}

func TestErrorHandler_UnknownErrorDoesNotLeakCause(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

	resp, err := newErrorApp(errors.New("password=hunter2")).Test(req)
	require.NoError(t, err)
	body := decodeErrorResponse(t, resp)
	assert.Equal(t, "Internal server error", body.Message)
}

func TestErrorHandler_HTMLFallsBackToPlainText(t *testing.T) {
	// No view engine is configured, so rendering fails and the message is sent as text.
	resp, err := newErrorApp(domain.NewQuizNotFoundError("01J0")).Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "There is no quiz with id=01J0", string(body))
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(RequestIDFrom(c)) })

	t.Run("Generated", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Len(t, string(body), 36)
		assert.Equal(t, string(body), resp.Header.Get(fiber.HeaderXRequestID))
	})

	t.Run("Propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(fiber.HeaderXRequestID, "upstream-id")
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "upstream-id", string(body))
	})
}

func TestRequestLogger_RunsErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(RequestLogger())
	app.Get("/", func(c *fiber.Ctx) error { return domain.NewQuizNotFoundError("x") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoadQuiz(t *testing.T) {
	quiz := domain.NewQuiz("Capital of France?", "Paris")
	repo := testutil.NewQuizRepository(quiz)
	svc := service.NewQuizService(repo, nil)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Get("/quizzes/:quizId", LoadQuiz(svc), func(c *fiber.Ctx) error {
		return c.SendString(QuizFrom(c).Question)
	})

	t.Run("Found", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/quizzes/"+quiz.ID, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "Capital of France?", string(body))
	})

	t.Run("UnknownULID", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/quizzes/"+util.NewULID(), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Malformed", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/quizzes/not-an-id", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.True(t, strings.Contains(string(body), "There is no quiz with id=not-an-id"))
	})

	t.Run("StorageFailure", func(t *testing.T) {
		repo.Err = errors.New("db down")
		defer func() { repo.Err = nil }()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/quizzes/"+quiz.ID, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestQuizFrom_WithoutLoader(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Nil(t, QuizFrom(c))
		return nil
	})
	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
}
