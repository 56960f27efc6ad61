package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"quizbox/internal/domain"
	"quizbox/internal/repository/models"
	"quizbox/internal/util"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// quizColumns is the projection shared by every read. The quoted aliases keep
// the column names lowercase on Oracle as well as on Postgres.
const quizColumns = `id "id",
		question "question",
		answer "answer",
		created_at "created_at",
		updated_at "updated_at"`

const maxInListSize = 1000

// quizOrder is the backend-independent default order of the quiz list.
const quizOrder = ` ORDER BY created_at ASC, id ASC`

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.DB
type QuizDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter
func NewQuizDatabaseAdapter(db *sqlx.DB) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db}
}

// FindByID implements domain.QuizRepository
func (a *QuizDatabaseAdapter) FindByID(ctx context.Context, id string) (*domain.Quiz, error) {
	var modelQuiz models.Quiz
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE id = ?`

	exec := GetExecutor(ctx, a.db)
	err := exec.GetContext(ctx, &modelQuiz, exec.Rebind(query), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by ID %s: %w", id, err)
	}
	return toDomainQuiz(&modelQuiz), nil
}

// FindAll implements domain.QuizRepository
func (a *QuizDatabaseAdapter) FindAll(ctx context.Context, filter domain.QuizFilter) ([]*domain.Quiz, error) {
	where, args := buildQuizWhere(filter)
	return a.selectQuizzes(ctx, `SELECT `+quizColumns+` FROM quizzes`+where+quizOrder, args)
}

// FindPage implements domain.QuizRepository. It returns at most limit quizzes
// of the filtered, ordered set, skipping the first offset.
func (a *QuizDatabaseAdapter) FindPage(ctx context.Context, filter domain.QuizFilter, offset, limit int) ([]*domain.Quiz, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("invalid page offset=%d limit=%d", offset, limit)
	}
	where, args := buildQuizWhere(filter)
	// OFFSET/FETCH is understood by both Postgres and Oracle 12c+.
	query := `SELECT ` + quizColumns + ` FROM quizzes` + where + quizOrder + ` OFFSET ? ROWS FETCH NEXT ? ROWS ONLY`
	return a.selectQuizzes(ctx, query, append(args, offset, limit))
}

// Count implements domain.QuizRepository
func (a *QuizDatabaseAdapter) Count(ctx context.Context, filter domain.QuizFilter) (int, error) {
	where, args := buildQuizWhere(filter)
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM quizzes`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	exec := GetExecutor(ctx, a.db)
	if err := exec.GetContext(ctx, &count, exec.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count quizzes: %w", err)
	}
	return count, nil
}

// Create implements domain.QuizRepository. The ID and timestamps are assigned
// here; only question and answer come from the caller.
func (a *QuizDatabaseAdapter) Create(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("cannot save nil quiz")
	}
	now := time.Now().UTC()
	modelQuiz := &models.Quiz{
		ID:        util.NewULID(),
		Question:  quiz.Question,
		Answer:    quiz.Answer,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `INSERT INTO quizzes (id, question, answer, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`

	exec := GetExecutor(ctx, a.db)
	_, err := exec.ExecContext(ctx, exec.Rebind(query),
		modelQuiz.ID,
		modelQuiz.Question,
		modelQuiz.Answer,
		modelQuiz.CreatedAt,
		modelQuiz.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save quiz: %w", err)
	}

	quiz.ID = modelQuiz.ID
	quiz.CreatedAt = modelQuiz.CreatedAt
	quiz.UpdatedAt = modelQuiz.UpdatedAt
	return nil
}

// Update implements domain.QuizRepository. Only question and answer are written.
func (a *QuizDatabaseAdapter) Update(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("cannot update nil quiz")
	}
	if quiz.ID == "" {
		return fmt.Errorf("cannot update quiz with empty ID")
	}
	updatedAt := time.Now().UTC()

	query := `UPDATE quizzes SET question = ?, answer = ?, updated_at = ? WHERE id = ?`

	exec := GetExecutor(ctx, a.db)
	result, err := exec.ExecContext(ctx, exec.Rebind(query),
		quiz.Question,
		quiz.Answer,
		updatedAt,
		quiz.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}
	if err := expectOneRow(result, quiz.ID); err != nil {
		return err
	}
	quiz.UpdatedAt = updatedAt
	return nil
}

// Delete implements domain.QuizRepository
func (a *QuizDatabaseAdapter) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM quizzes WHERE id = ?`

	exec := GetExecutor(ctx, a.db)
	result, err := exec.ExecContext(ctx, exec.Rebind(query), id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	return expectOneRow(result, id)
}

// Ping implements domain.QuizRepository
func (a *QuizDatabaseAdapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *QuizDatabaseAdapter) selectQuizzes(ctx context.Context, query string, args []interface{}) ([]*domain.Quiz, error) {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build quiz query: %w", err)
	}

	var modelQuizzes []models.Quiz
	exec := GetExecutor(ctx, a.db)
	if err := exec.SelectContext(ctx, &modelQuizzes, exec.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query quizzes: %w", err)
	}

	domainQuizzes := make([]*domain.Quiz, 0, len(modelQuizzes))
	for i := range modelQuizzes {
		domainQuizzes = append(domainQuizzes, toDomainQuiz(&modelQuizzes[i]))
	}
	return domainQuizzes, nil
}

// buildQuizWhere renders filter as a WHERE clause with ? placeholders. The
// excluded ids are passed as slice arguments for sqlx.In to expand, at most
// maxInListSize per list.
func buildQuizWhere(filter domain.QuizFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, `LOWER(question) LIKE ?`)
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	// Oracle caps an IN list at 1000 entries (ORA-01795).
	for ids := filter.ExcludeIDs; len(ids) > 0; {
		n := min(len(ids), maxInListSize)
		conditions = append(conditions, `id NOT IN (?)`)
		args = append(args, ids[:n])
		ids = ids[n:]
	}

	if len(conditions) == 0 {
		return "", args
	}
	return ` WHERE ` + strings.Join(conditions, ` AND `), args
}

func expectOneRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("quiz with ID %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	return &domain.Quiz{
		ID:        m.ID,
		Question:  m.Question,
		Answer:    m.Answer,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
