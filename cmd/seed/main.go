package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"quizbox/cmd/seed/internal/seedmodels"
	"quizbox/internal/config"
	"quizbox/internal/database"
	"quizbox/internal/domain"
	"quizbox/internal/logger"
	"quizbox/internal/repository"
	"quizbox/internal/validation"

	"go.uber.org/zap"
)

const defaultSeedFile = "configs/seed_data/quizzes.json"

func firstN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func main() {
	seedFile := flag.String("file", defaultSeedFile, "path to the JSON seed file")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	l := logger.Get()

	l.Info("Starting initial data seeding process...")
	db, err := database.Open(ctx, cfg)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	l.Info("Loading seed data from file", zap.String("path", *seedFile))
	byteValue, err := os.ReadFile(*seedFile)
	if err != nil {
		l.Fatal("Failed to read seed file", zap.String("path", *seedFile), zap.Error(err))
	}

	var sets []seedmodels.SeedSet
	if err := json.Unmarshal(byteValue, &sets); err != nil {
		l.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}
	l.Info("Successfully unmarshalled seed data", zap.Int("sets_loaded", len(sets)))

	s := &seeder{
		txManager: repository.NewTransactionManagerAdapter(db),
		quizzes:   repository.NewQuizDatabaseAdapter(db),
		validator: validation.NewValidator(),
		log:       l,
	}
	for _, set := range sets {
		created, err := s.seedSet(ctx, set)
		if err != nil {
			l.Error("Error seeding set, transaction rolled back", zap.String("set", set.Name), zap.Error(err))
			continue
		}
		l.Info("Seeded set", zap.String("set", set.Name), zap.Int("created", created))
	}
	l.Info("Initial data seeding process completed.")
}

type seeder struct {
	txManager domain.TransactionManager
	quizzes   domain.QuizRepository
	validator *validation.Validator
	log       *zap.Logger
}

// seedSet inserts the quizzes of one set in a single transaction. Questions
// already stored are skipped, so running the seeder twice is harmless.
func (s *seeder) seedSet(ctx context.Context, set seedmodels.SeedSet) (int, error) {
	created := 0
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.quizzes.FindAll(txCtx, domain.QuizFilter{})
		if err != nil {
			return fmt.Errorf("failed to load existing quizzes: %w", err)
		}
		seen := make(map[string]struct{}, len(existing))
		for _, q := range existing {
			seen[seedmodels.QuestionKey(q.Question)] = struct{}{}
		}

		for _, sq := range set.Quizzes {
			key := seedmodels.QuestionKey(sq.Question)
			if _, ok := seen[key]; ok {
				s.log.Info("Quiz exists, skipping.", zap.String("question_preview", firstN(sq.Question, 20)))
				continue
			}
			quiz := domain.NewQuiz(sq.Question, sq.Answer)
			if verrs := s.validator.ValidateQuiz(quiz); len(verrs) > 0 {
				return fmt.Errorf("invalid quiz '%s': %w", firstN(sq.Question, 50), verrs)
			}
			if err := s.quizzes.Create(txCtx, quiz); err != nil {
				return fmt.Errorf("failed to save quiz '%s': %w", firstN(sq.Question, 50), err)
			}
			seen[key] = struct{}{}
			created++
			s.log.Info("Successfully created quiz.", zap.String("id", quiz.ID))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
