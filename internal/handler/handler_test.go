package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"quizbox/internal/config"
	"quizbox/internal/domain"
	"quizbox/internal/logger"
	"quizbox/internal/router"
	"quizbox/internal/service"
	"quizbox/internal/session"
	"quizbox/internal/testutil"
	"quizbox/web"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Env: "test", Level: "error"}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}
	os.Exit(m.Run())
}

const cookieName = "quizbox_test_session"

type testClient struct {
	t      *testing.T
	app    *fiber.App
	repo   *testutil.QuizRepository
	cache  *testutil.Cache
	cookie *http.Cookie
}

func newTestClient(t *testing.T, quizzes ...*domain.Quiz) *testClient {
	t.Helper()
	repo := testutil.NewQuizRepository(quizzes...)
	cache := testutil.NewCache()
	sessionCfg := config.SessionConfig{CookieName: cookieName, Expiration: time.Hour}

	quizService := service.NewQuizService(repo, nil)
	app := router.New(config.ServerConfig{}, router.Dependencies{
		QuizService:       quizService,
		RandomPlayService: service.NewRandomPlayService(repo, service.NewRandomPlayStore(cache, sessionCfg.Expiration)),
		Cache:             cache,
		SessionStore:      session.NewStore(sessionCfg, nil),
		Views:             web.NewEngine(),
	})
	return &testClient{t: t, app: app, repo: repo, cache: cache}
}

func (tc *testClient) do(req *http.Request) (*http.Response, string) {
	tc.t.Helper()
	if tc.cookie != nil {
		req.AddCookie(tc.cookie)
	}
	resp, err := tc.app.Test(req, -1)
	require.NoError(tc.t, err)
	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			tc.cookie = c
		}
	}
	body, err := io.ReadAll(resp.Body)
	require.NoError(tc.t, err)
	return resp, string(body)
}

func (tc *testClient) get(path string) (*http.Response, string) {
	return tc.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (tc *testClient) send(method, path string, form url.Values) (*http.Response, string) {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return tc.do(req)
}

func seededQuiz(question, answer string) *domain.Quiz {
	return domain.NewQuiz(question, answer)
}

func TestIndex(t *testing.T) {
	tc := newTestClient(t,
		seededQuiz("Capital of Italy?", "Rome"),
		seededQuiz("Capital of Spain?", "Madrid"),
		seededQuiz("Largest ocean?", "Pacific"),
	)

	t.Run("ListsAllInCreationOrder", func(t *testing.T) {
		resp, body := tc.get("/quizzes")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		italy := strings.Index(body, "Capital of Italy?")
		spain := strings.Index(body, "Capital of Spain?")
		assert.True(t, italy >= 0 && spain > italy, "quizzes must be listed in creation order")
		assert.Contains(t, body, "Largest ocean?")
	})

	t.Run("Search", func(t *testing.T) {
		_, body := tc.get("/quizzes?search=CAPITAL")
		assert.Contains(t, body, "Capital of Italy?")
		assert.Contains(t, body, "Capital of Spain?")
		assert.NotContains(t, body, "Largest ocean?")
	})

	t.Run("RootRedirects", func(t *testing.T) {
		resp, _ := tc.get("/")
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/quizzes", resp.Header.Get(fiber.HeaderLocation))
	})

	t.Run("StorageFailure", func(t *testing.T) {
		tc.repo.Err = assert.AnError
		defer func() { tc.repo.Err = nil }()

		resp, body := tc.get("/quizzes")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, body, "Failed to list quizzes")
	})
}

func TestShowAndNew(t *testing.T) {
	quiz := seededQuiz("Capital of Italy?", "Rome")
	tc := newTestClient(t, quiz)

	resp, body := tc.get("/quizzes/" + quiz.ID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Capital of Italy?")
	assert.Contains(t, body, "Rome")

	resp, body = tc.get("/quizzes/new")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="question"`)
	assert.Equal(t, 1, tc.repo.Len(), "new must not persist anything")

	resp, body = tc.get("/quizzes/01HZZZZZZZZZZZZZZZZZZZZZZZ")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "There is no quiz with id=01HZZZZZZZZZZZZZZZZZZZZZZZ")
}

func TestCreate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		tc := newTestClient(t)

		resp, _ := tc.send(http.MethodPost, "/quizzes", url.Values{
			"question": {"Capital of France?"},
			"answer":   {"Paris"},
			"id":       {"01HZZZZZZZZZZZZZZZZZZZZZZZ"},
		})
		require.Equal(t, http.StatusFound, resp.StatusCode)
		location := resp.Header.Get(fiber.HeaderLocation)
		require.True(t, strings.HasPrefix(location, "/quizzes/"))
		assert.NotEqual(t, "/quizzes/01HZZZZZZZZZZZZZZZZZZZZZZZ", location, "id must not be mass-assigned")

		_, body := tc.get(location)
		assert.Contains(t, body, "Quiz created successfully.")
		assert.Contains(t, body, "Capital of France?")

		_, body = tc.get(location)
		assert.NotContains(t, body, "Quiz created successfully.", "flash is shown once")
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		tc := newTestClient(t)

		resp, body := tc.send(http.MethodPost, "/quizzes", url.Values{
			"question": {"Half filled"},
			"answer":   {"   "},
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "There are errors in the form:")
		assert.Contains(t, body, "Answer must not be empty.")
		assert.NotContains(t, body, "Question must not be empty.")
		assert.Contains(t, body, `value="Half filled"`)
		assert.Equal(t, 0, tc.repo.Len())
	})

	t.Run("StorageFailure", func(t *testing.T) {
		tc := newTestClient(t)
		tc.repo.Err = assert.AnError

		resp, _ := tc.send(http.MethodPost, "/quizzes", url.Values{
			"question": {"q"},
			"answer":   {"a"},
		})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		tc.repo.Err = nil
		_, body := tc.get("/quizzes")
		assert.Contains(t, body, "Error creating a new Quiz: Failed to create quiz")
	})
}

func TestEditAndUpdate(t *testing.T) {
	quiz := seededQuiz("Capital of Italy?", "Rome")
	tc := newTestClient(t, quiz)
	createdAt := quiz.CreatedAt

	resp, body := tc.get("/quizzes/" + quiz.ID + "/edit")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="Rome"`)
	assert.Contains(t, body, `value="PUT"`)

	t.Run("ValidationFailureIsNotCommitted", func(t *testing.T) {
		resp, body := tc.send(http.MethodPut, "/quizzes/"+quiz.ID, url.Values{
			"question": {""},
			"answer":   {"Milan"},
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Question must not be empty.")
		assert.Contains(t, body, `value="Milan"`)

		stored, err := tc.repo.FindByID(t.Context(), quiz.ID)
		require.NoError(t, err)
		assert.Equal(t, "Rome", stored.Answer)
	})

	t.Run("Success", func(t *testing.T) {
		resp, _ := tc.send(http.MethodPut, "/quizzes/"+quiz.ID, url.Values{
			"question":   {"Capital of Italy (city)?"},
			"answer":     {"Roma"},
			"created_at": {"1999-01-01T00:00:00Z"},
		})
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/quizzes/"+quiz.ID, resp.Header.Get(fiber.HeaderLocation))

		_, body := tc.get("/quizzes/" + quiz.ID)
		assert.Contains(t, body, "Quiz edited successfully.")
		assert.Contains(t, body, "Roma")

		stored, err := tc.repo.FindByID(t.Context(), quiz.ID)
		require.NoError(t, err)
		assert.Equal(t, createdAt, stored.CreatedAt)
	})

	t.Run("FormMethodOverride", func(t *testing.T) {
		resp, _ := tc.send(http.MethodPost, "/quizzes/"+quiz.ID, url.Values{
			"_method":  {"put"},
			"question": {"Capital of Italy?"},
			"answer":   {"Rome"},
		})
		assert.Equal(t, http.StatusFound, resp.StatusCode)

		stored, err := tc.repo.FindByID(t.Context(), quiz.ID)
		require.NoError(t, err)
		assert.Equal(t, "Rome", stored.Answer)
	})

	t.Run("UnknownOverride", func(t *testing.T) {
		resp, _ := tc.send(http.MethodPost, "/quizzes/"+quiz.ID, url.Values{"_method": {"PATCHY"}})
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestDestroy(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		quiz := seededQuiz("Capital of Italy?", "Rome")
		tc := newTestClient(t, quiz)

		resp, _ := tc.do(httptest.NewRequest(http.MethodDelete, "/quizzes/"+quiz.ID, nil))
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/quizzes", resp.Header.Get(fiber.HeaderLocation))

		_, body := tc.get("/quizzes")
		assert.Contains(t, body, "Quiz deleted successfully.")
		assert.NotContains(t, body, "Capital of Italy?")

		resp, _ = tc.get("/quizzes/" + quiz.ID)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("ViaForm", func(t *testing.T) {
		quiz := seededQuiz("Capital of Italy?", "Rome")
		tc := newTestClient(t, quiz)

		resp, _ := tc.send(http.MethodPost, "/quizzes/"+quiz.ID, url.Values{"_method": {"DELETE"}})
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, 0, tc.repo.Len())
	})
}

func TestPlayAndCheck(t *testing.T) {
	quiz := seededQuiz("Capital of Italy?", "Rome")
	tc := newTestClient(t, quiz)

	resp, body := tc.get("/quizzes/" + quiz.ID + "/play")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Capital of Italy?")
	assert.NotContains(t, body, "Rome", "play must not reveal the answer")

	_, body = tc.get("/quizzes/" + quiz.ID + "/play?answer=Milan")
	assert.Contains(t, body, `value="Milan"`)

	_, body = tc.get("/quizzes/" + quiz.ID + "/check?answer=" + url.QueryEscape("  rOmE "))
	assert.Contains(t, body, "Correct!")

	_, body = tc.get("/quizzes/" + quiz.ID + "/check?answer=Milan")
	assert.Contains(t, body, "Wrong!")

	_, body = tc.get("/quizzes/" + quiz.ID + "/check")
	assert.Contains(t, body, "Wrong!")
}

var randomCheckLink = regexp.MustCompile(`/quizzes/([0-9A-Z]{26})/randomcheck`)

func TestRandomPlay_EndToEnd(t *testing.T) {
	a := seededQuiz("Capital of Italy?", "Rome")
	b := seededQuiz("Capital of Spain?", "Madrid")
	c := seededQuiz("Capital of France?", "Paris")
	tc := newTestClient(t, a, b, c)
	answers := map[string]string{a.ID: "Rome", b.ID: "Madrid", c.ID: "Paris"}

	draw := func() string {
		resp, body := tc.get("/quizzes/randomplay")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		match := randomCheckLink.FindStringSubmatch(body)
		require.Len(t, match, 2, "random play page must link to randomcheck")
		return match[1]
	}

	seen := map[string]bool{}
	for score := 1; score <= 3; score++ {
		id := draw()
		assert.False(t, seen[id], "an answered quiz must not be offered again")

		_, body := tc.get("/quizzes/" + id + "/randomcheck?answer=wrong")
		assert.Contains(t, body, "Wrong!")
		assert.Contains(t, body, "Score: "+strconv.Itoa(score-1))

		_, body = tc.get("/quizzes/" + id + "/randomcheck?answer=" + url.QueryEscape(answers[id]))
		assert.Contains(t, body, "Correct!")
		assert.Contains(t, body, "Score: "+strconv.Itoa(score))
		seen[id] = true
	}

	_, body := tc.get("/quizzes/randomplay")
	assert.Contains(t, body, "There are no more quizzes.")
	assert.Contains(t, body, "Final score: 3")

	_, body = tc.get("/quizzes/randomplay")
	assert.Contains(t, body, "Score: 0", "the run starts over after exhaustion")
}

func TestRandomPlay_SessionsAreIndependent(t *testing.T) {
	quiz := seededQuiz("Capital of Italy?", "Rome")
	tc := newTestClient(t, quiz)

	tc.get("/quizzes/randomplay")
	_, body := tc.get("/quizzes/" + quiz.ID + "/randomcheck?answer=Rome")
	require.Contains(t, body, "Score: 1")

	tc.cookie = nil
	_, body = tc.get("/quizzes/randomplay")
	assert.Contains(t, body, "Capital of Italy?", "a new session has its own progress")
	assert.Contains(t, body, "Score: 0")
}

func TestHealthz(t *testing.T) {
	tc := newTestClient(t)

	resp, body := tc.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	tc.cache.Err = assert.AnError
	resp, body = tc.get("/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.JSONEq(t, `{"status":"unavailable","failed":"cache"}`, body)
}
