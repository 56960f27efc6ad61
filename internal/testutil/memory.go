// Package testutil holds in-memory stand-ins for the storage ports, used by
// tests that exercise several layers at once.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"quizbox/internal/domain"
	"quizbox/internal/util"
)

// QuizRepository is a domain.QuizRepository kept in a map. It follows the
// SQL adapter's ordering and filtering rules.
type QuizRepository struct {
	mu      sync.Mutex
	quizzes map[string]domain.Quiz
	clock   time.Time
	// Err, when set, is returned by every call.
	Err error
}

func NewQuizRepository(quizzes ...*domain.Quiz) *QuizRepository {
	r := &QuizRepository{
		quizzes: make(map[string]domain.Quiz),
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, q := range quizzes {
		if q.IsNew() {
			_ = r.Create(context.Background(), q)
			continue
		}
		if q.CreatedAt.IsZero() {
			q.CreatedAt = r.tick()
			q.UpdatedAt = q.CreatedAt
		}
		r.quizzes[q.ID] = *q
	}
	return r
}

// tick returns strictly increasing timestamps so creation order is stable.
func (r *QuizRepository) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (*domain.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	q, ok := r.quizzes[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r *QuizRepository) FindAll(ctx context.Context, filter domain.QuizFilter) ([]*domain.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.filtered(filter), nil
}

func (r *QuizRepository) FindPage(ctx context.Context, filter domain.QuizFilter, offset, limit int) ([]*domain.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("invalid page offset=%d limit=%d", offset, limit)
	}
	all := r.filtered(filter)
	if offset >= len(all) {
		return []*domain.Quiz{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *QuizRepository) Count(ctx context.Context, filter domain.QuizFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return len(r.filtered(filter)), nil
}

func (r *QuizRepository) Create(ctx context.Context, quiz *domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	quiz.ID = util.NewULID()
	quiz.CreatedAt = r.tick()
	quiz.UpdatedAt = quiz.CreatedAt
	r.quizzes[quiz.ID] = *quiz
	return nil
}

func (r *QuizRepository) Update(ctx context.Context, quiz *domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	stored, ok := r.quizzes[quiz.ID]
	if !ok {
		return fmt.Errorf("quiz with ID %s: %w", quiz.ID, sql.ErrNoRows)
	}
	stored.Question = quiz.Question
	stored.Answer = quiz.Answer
	stored.UpdatedAt = r.tick()
	r.quizzes[quiz.ID] = stored
	quiz.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.quizzes[id]; !ok {
		return fmt.Errorf("quiz with ID %s: %w", id, sql.ErrNoRows)
	}
	delete(r.quizzes, id)
	return nil
}

func (r *QuizRepository) Ping(ctx context.Context) error {
	return r.Err
}

// Len returns the number of stored quizzes.
func (r *QuizRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.quizzes)
}

func (r *QuizRepository) filtered(filter domain.QuizFilter) []*domain.Quiz {
	excluded := make(map[string]bool, len(filter.ExcludeIDs))
	for _, id := range filter.ExcludeIDs {
		excluded[id] = true
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	result := make([]*domain.Quiz, 0, len(r.quizzes))
	for _, q := range r.quizzes {
		if excluded[q.ID] {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(q.Question), search) {
			continue
		}
		q := q
		result = append(result, &q)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Cache is a domain.Cache kept in a map. Expirations are recorded but not
// enforced.
type Cache struct {
	mu      sync.Mutex
	entries map[string]string
	TTLs    map[string]time.Duration
	// Err, when set, is returned by every call.
	Err error
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]string),
		TTLs:    make(map[string]time.Duration),
	}
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return "", c.Err
	}
	val, ok := c.entries[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return val, nil
}

func (c *Cache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.entries[key] = value
	c.TTLs[key] = expiration
	return nil
}

func (c *Cache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	if _, ok := c.entries[key]; !ok {
		return domain.ErrCacheMiss
	}
	c.TTLs[key] = expiration
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	delete(c.entries, key)
	delete(c.TTLs, key)
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.Err
}
