package domain

import "context"

// QuizRepository is the persistence port for quizzes.
//
// FindByID returns (nil, nil) when no quiz has the id. Create and Update only
// ever write the question and answer columns (plus timestamps).
type QuizRepository interface {
	FindByID(ctx context.Context, id string) (*Quiz, error)
	FindAll(ctx context.Context, filter QuizFilter) ([]*Quiz, error)
	FindPage(ctx context.Context, filter QuizFilter, offset, limit int) ([]*Quiz, error)
	Count(ctx context.Context, filter QuizFilter) (int, error)
	Create(ctx context.Context, quiz *Quiz) error
	Update(ctx context.Context, quiz *Quiz) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// TransactionManager runs fn inside one database transaction. Repository
// calls made with the ctx passed to fn join that transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
