package service

import (
	"context"
	"testing"
	"time"

	"task-notifier/internal/model"
	"task-notifier/pkg/cache"
	"task-notifier/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipientResolver_ResolvesKnownAndReportsUnknown(t *testing.T) {
	userRepo := newFakeUserRepo(
		model.User{ID: 1, FirstName: "Ana", Email: "ana@example.com"},
		model.User{ID: 2, FirstName: "Ben", Email: "ben@example.com"},
	)
	resolver := NewRecipientResolver(logger.NewNop(), userRepo, cache.NewCache(time.Minute, time.Minute), time.Minute)

	contacts, unresolved, err := resolver.Resolve(context.Background(), []uint{1, 2, 99})
	require.NoError(t, err)

	assert.Len(t, contacts, 2)
	assert.Equal(t, []uint{99}, unresolved)
}

func TestRecipientResolver_UsesCacheOnSecondLookup(t *testing.T) {
	userRepo := newFakeUserRepo(model.User{ID: 1, FirstName: "Ana", Email: "ana@example.com"})
	resolver := NewRecipientResolver(logger.NewNop(), userRepo, cache.NewCache(time.Minute, time.Minute), time.Minute)

	contacts, unresolved, err := resolver.Resolve(context.Background(), []uint{1})
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	require.Empty(t, unresolved)

	// The contact record is now cached, so a store-side deletion is not
	// visible until the entry expires.
	userRepo.remove(1)

	contacts, unresolved, err = resolver.Resolve(context.Background(), []uint{1})
	require.NoError(t, err)
	assert.Len(t, contacts, 1)
	assert.Empty(t, unresolved)
}

func TestRecipientResolver_NothingResolves(t *testing.T) {
	resolver := NewRecipientResolver(logger.NewNop(), newFakeUserRepo(), cache.NewCache(time.Minute, time.Minute), time.Minute)

	contacts, unresolved, err := resolver.Resolve(context.Background(), []uint{5, 6})
	require.NoError(t, err)

	assert.Empty(t, contacts)
	assert.ElementsMatch(t, []uint{5, 6}, unresolved)
}
