package service

import (
	"context"
	"database/sql"
	"errors"
	"quizbox/internal/domain"
	"quizbox/internal/logger"
	"quizbox/internal/validation"

	"go.uber.org/zap"
)

// QuizService defines the quiz operations used by the web handlers.
type QuizService interface {
	ListQuizzes(ctx context.Context, search string) ([]*domain.Quiz, error)
	// GetQuiz returns a QUIZ_NOT_FOUND domain error when id is unknown.
	GetQuiz(ctx context.Context, id string) (*domain.Quiz, error)
	// CreateQuiz and UpdateQuiz return domain.ValidationErrors when the quiz
	// breaks a field rule. Nothing is written in that case.
	CreateQuiz(ctx context.Context, quiz *domain.Quiz) error
	UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error
	DeleteQuiz(ctx context.Context, quiz *domain.Quiz) error
	CheckAnswer(quiz *domain.Quiz, answer string) bool
	Ping(ctx context.Context) error
}

type quizService struct {
	repo      domain.QuizRepository
	validator *validation.Validator
}

// NewQuizService creates a new instance of quizService
func NewQuizService(repo domain.QuizRepository, validator *validation.Validator) QuizService {
	if validator == nil {
		validator = validation.NewValidator()
	}
	return &quizService{
		repo:      repo,
		validator: validator,
	}
}

func (s *quizService) ListQuizzes(ctx context.Context, search string) ([]*domain.Quiz, error) {
	if errs := s.validator.ValidateSearch(search); len(errs) > 0 {
		return nil, domain.NewInvalidInputError(errs.Error())
	}

	quizzes, err := s.repo.FindAll(ctx, domain.QuizFilter{Search: search})
	if err != nil {
		logger.Get().Error("Failed to list quizzes", zap.Error(err), zap.String("search", search))
		return nil, domain.NewDatabaseError("Failed to list quizzes", err)
	}
	return quizzes, nil
}

func (s *quizService) GetQuiz(ctx context.Context, id string) (*domain.Quiz, error) {
	quiz, err := s.repo.FindByID(ctx, id)
	if err != nil {
		logger.Get().Error("Failed to get quiz", zap.Error(err), zap.String("quizID", id))
		return nil, domain.NewDatabaseError("Failed to get quiz", err).WithContext("quiz_id", id)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(id)
	}
	return quiz, nil
}

func (s *quizService) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil {
		return domain.NewInvalidInputError("quiz is required")
	}
	if errs := s.validator.ValidateQuiz(quiz); len(errs) > 0 {
		return errs
	}

	if err := s.repo.Create(ctx, quiz); err != nil {
		logger.Get().Error("Failed to create quiz", zap.Error(err))
		return domain.NewDatabaseError("Failed to create quiz", err)
	}
	logger.Get().Info("Quiz created", zap.String("quizID", quiz.ID))
	return nil
}

func (s *quizService) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil || quiz.IsNew() {
		return domain.NewInvalidInputError("an existing quiz is required")
	}
	if errs := s.validator.ValidateQuiz(quiz); len(errs) > 0 {
		return errs
	}

	if err := s.repo.Update(ctx, quiz); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewQuizNotFoundError(quiz.ID)
		}
		logger.Get().Error("Failed to update quiz", zap.Error(err), zap.String("quizID", quiz.ID))
		return domain.NewDatabaseError("Failed to update quiz", err).WithContext("quiz_id", quiz.ID)
	}
	logger.Get().Info("Quiz updated", zap.String("quizID", quiz.ID))
	return nil
}

func (s *quizService) DeleteQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil || quiz.IsNew() {
		return domain.NewInvalidInputError("an existing quiz is required")
	}

	if err := s.repo.Delete(ctx, quiz.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewQuizNotFoundError(quiz.ID)
		}
		logger.Get().Error("Failed to delete quiz", zap.Error(err), zap.String("quizID", quiz.ID))
		return domain.NewDatabaseError("Failed to delete quiz", err).WithContext("quiz_id", quiz.ID)
	}
	logger.Get().Info("Quiz deleted", zap.String("quizID", quiz.ID))
	return nil
}

// CheckAnswer grades answer against the quiz. It never touches storage.
func (s *quizService) CheckAnswer(quiz *domain.Quiz, answer string) bool {
	return quiz.Check(answer)
}

func (s *quizService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
