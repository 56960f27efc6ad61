package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizbox/internal/domain"
	"quizbox/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSessionKey = "quizbox:randomplay:answered:sid-1"

func TestRandomPlayStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("Miss", func(t *testing.T) {
		c := new(MockCache)
		c.On("Get", ctx, testSessionKey).Return("", domain.ErrCacheMiss).Once()

		session, err := NewRandomPlayStore(c, time.Hour).Load(ctx, "sid-1")
		require.NoError(t, err)
		assert.Equal(t, 0, session.Score())
		assert.NotNil(t, session.AnsweredIDs)
		c.AssertExpectations(t)
	})

	t.Run("Hit", func(t *testing.T) {
		c := new(MockCache)
		c.On("Get", ctx, testSessionKey).Return(`{"answered_ids":["a","b"]}`, nil).Once()
		c.On("Expire", ctx, testSessionKey, time.Hour).Return(nil).Once()

		session, err := NewRandomPlayStore(c, time.Hour).Load(ctx, "sid-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, session.AnsweredIDs)
		c.AssertExpectations(t)
	})

	t.Run("HitSurvivesFailedRefresh", func(t *testing.T) {
		c := new(MockCache)
		c.On("Get", ctx, testSessionKey).Return(`{"answered_ids":["a"]}`, nil).Once()
		c.On("Expire", ctx, testSessionKey, time.Hour).Return(errors.New("redis down")).Once()

		session, err := NewRandomPlayStore(c, time.Hour).Load(ctx, "sid-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, session.AnsweredIDs)
	})

	t.Run("CorruptEntryStartsOver", func(t *testing.T) {
		c := new(MockCache)
		c.On("Get", ctx, testSessionKey).Return(`{not json`, nil).Once()

		session, err := NewRandomPlayStore(c, time.Hour).Load(ctx, "sid-1")
		require.NoError(t, err)
		assert.Equal(t, 0, session.Score())
		c.AssertNotCalled(t, "Expire", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CacheError", func(t *testing.T) {
		c := new(MockCache)
		cacheErr := errors.New("redis down")
		c.On("Get", ctx, testSessionKey).Return("", cacheErr).Once()

		_, err := NewRandomPlayStore(c, time.Hour).Load(ctx, "sid-1")
		assert.ErrorIs(t, err, cacheErr)
		assert.Equal(t, domain.CodeCache, domain.CodeOf(err))
	})

	t.Run("MissingSessionID", func(t *testing.T) {
		_, err := NewRandomPlayStore(new(MockCache), time.Hour).Load(ctx, "")
		assert.Equal(t, domain.CodeInvalidInput, domain.CodeOf(err))
	})
}

func TestRandomPlayStore_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		c := new(MockCache)
		c.On("Set", ctx, testSessionKey, `{"answered_ids":["a"]}`, 30*time.Minute).Return(nil).Once()

		err := NewRandomPlayStore(c, 30*time.Minute).Save(ctx, "sid-1", &domain.RandomPlaySession{AnsweredIDs: []string{"a"}})
		assert.NoError(t, err)
		c.AssertExpectations(t)
	})

	t.Run("EmptySessionIsStoredAsEmptyList", func(t *testing.T) {
		c := new(MockCache)
		c.On("Set", ctx, testSessionKey, `{"answered_ids":[]}`, time.Hour).Return(nil).Once()

		assert.NoError(t, NewRandomPlayStore(c, time.Hour).Save(ctx, "sid-1", domain.NewRandomPlaySession()))
		c.AssertExpectations(t)
	})

	t.Run("CacheError", func(t *testing.T) {
		c := new(MockCache)
		c.On("Set", ctx, testSessionKey, `{"answered_ids":[]}`, time.Hour).Return(errors.New("OOM")).Once()

		err := NewRandomPlayStore(c, time.Hour).Save(ctx, "sid-1", domain.NewRandomPlaySession())
		assert.Equal(t, domain.CodeCache, domain.CodeOf(err))
	})

	t.Run("Nil", func(t *testing.T) {
		err := NewRandomPlayStore(new(MockCache), time.Hour).Save(ctx, "sid-1", nil)
		assert.Equal(t, domain.CodeInvalidInput, domain.CodeOf(err))
	})
}

func TestRandomPlayStore_LoadSlidesExpiration(t *testing.T) {
	ctx := context.Background()
	c := testutil.NewCache()
	store := NewRandomPlayStore(c, time.Hour)

	require.NoError(t, store.Save(ctx, "sid-1", &domain.RandomPlaySession{AnsweredIDs: []string{"a"}}))
	c.TTLs[testSessionKey] = time.Minute // most of the hour has passed

	_, err := store.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, c.TTLs[testSessionKey])
}
