package service

import (
	"context"
	"math/rand/v2"
	"quizbox/internal/domain"
	"quizbox/internal/dto"
	"quizbox/internal/logger"

	"go.uber.org/zap"
)

// maxDrawAttempts bounds the retries when the drawn page comes back empty
// because quizzes were deleted between the count and the fetch.
const maxDrawAttempts = 3

// RandomPlayService draws quizzes at random without repeating the ones the
// session already answered correctly.
type RandomPlayService interface {
	// Next draws the next quiz. When every quiz has been answered the round is
	// Exhausted, carries the final score, and the session starts over.
	Next(ctx context.Context, sessionID string) (*dto.RandomPlayRound, error)
	// Check grades answer. A correct answer removes quiz from later draws.
	Check(ctx context.Context, sessionID string, quiz *domain.Quiz, answer string) (*dto.RandomCheckResult, error)
}

type randomPlayService struct {
	repo  domain.QuizRepository
	store RandomPlayStore
	intn  func(n int) int
}

func NewRandomPlayService(repo domain.QuizRepository, store RandomPlayStore) RandomPlayService {
	return &randomPlayService{
		repo:  repo,
		store: store,
		intn:  rand.IntN,
	}
}

func (s *randomPlayService) Next(ctx context.Context, sessionID string) (*dto.RandomPlayRound, error) {
	session, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	filter := domain.QuizFilter{ExcludeIDs: session.AnsweredIDs}

	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		count, err := s.repo.Count(ctx, filter)
		if err != nil {
			logger.Get().Error("Failed to count random play candidates", zap.Error(err))
			return nil, domain.NewDatabaseError("Failed to count quizzes", err)
		}

		if count == 0 {
			score := session.Score()
			session.Reset()
			if err := s.store.Save(ctx, sessionID, session); err != nil {
				return nil, err
			}
			logger.Get().Info("Random play exhausted", zap.Int("score", score))
			return &dto.RandomPlayRound{Score: score, Exhausted: true}, nil
		}

		quizzes, err := s.repo.FindPage(ctx, filter, s.intn(count), 1)
		if err != nil {
			logger.Get().Error("Failed to fetch random quiz", zap.Error(err))
			return nil, domain.NewDatabaseError("Failed to fetch random quiz", err)
		}
		if len(quizzes) > 0 {
			return &dto.RandomPlayRound{Quiz: quizzes[0], Score: session.Score()}, nil
		}
		logger.Get().Warn("Random quiz vanished before it was fetched, drawing again", zap.Int("attempt", attempt+1))
	}

	return nil, domain.NewInternalError("Failed to draw a random quiz", nil)
}

func (s *randomPlayService) Check(ctx context.Context, sessionID string, quiz *domain.Quiz, answer string) (*dto.RandomCheckResult, error) {
	if quiz == nil {
		return nil, domain.NewInvalidInputError("quiz is required")
	}
	session, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := quiz.Check(answer)
	if result && session.Record(quiz.ID) {
		if err := s.store.Save(ctx, sessionID, session); err != nil {
			return nil, err
		}
	}

	return &dto.RandomCheckResult{
		Quiz:   quiz,
		Answer: answer,
		Result: result,
		Score:  session.Score(),
	}, nil
}
