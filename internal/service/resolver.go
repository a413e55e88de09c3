package service

import (
	"context"
	"fmt"
	"time"

	"task-notifier/internal/model"
	"task-notifier/internal/repository"
	"task-notifier/pkg/cache"
	"task-notifier/pkg/logger"
)

// RecipientResolver maps recipient ids to contact records at fire time.
//
// Resolution is lenient: ids that no longer exist (e.g. the user was deleted
// after the task was created) are skipped and reported, they do not block
// resolution of the rest. The caller decides what to do when nothing resolves.
type RecipientResolver interface {
	Resolve(ctx context.Context, ids []uint) (contacts []model.User, unresolved []uint, err error)
}

type recipientResolver struct {
	log      *logger.Logger
	userRepo repository.UserRepository
	cache    cache.Cache
	ttl      time.Duration
}

func NewRecipientResolver(log *logger.Logger, userRepo repository.UserRepository, c cache.Cache, ttl time.Duration) RecipientResolver {
	return &recipientResolver{
		log:      log,
		userRepo: userRepo,
		cache:    c,
		ttl:      ttl,
	}
}

func contactCacheKey(id uint) string {
	return fmt.Sprintf("contact:%d", id)
}

func (r *recipientResolver) Resolve(ctx context.Context, ids []uint) ([]model.User, []uint, error) {
	contacts := make([]model.User, 0, len(ids))
	var misses []uint

	for _, id := range ids {
		if cached, ok := r.cache.Get(contactCacheKey(id)); ok {
			if user, ok := cached.(model.User); ok {
				contacts = append(contacts, user)
				continue
			}
		}
		misses = append(misses, id)
	}

	if len(misses) == 0 {
		return contacts, nil, nil
	}

	users, err := r.userRepo.FindByIDs(ctx, misses)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up recipients: %w", err)
	}

	found := make(map[uint]struct{}, len(users))
	for _, user := range users {
		found[user.ID] = struct{}{}
		r.cache.Set(contactCacheKey(user.ID), user, r.ttl)
		contacts = append(contacts, user)
	}

	var unresolved []uint
	for _, id := range misses {
		if _, ok := found[id]; !ok {
			unresolved = append(unresolved, id)
		}
	}

	if len(unresolved) > 0 {
		r.log.WarnContext(ctx, "Some recipients could not be resolved",
			logger.Field("unresolved_ids", unresolved),
			logger.IntField("resolved_count", len(contacts)),
		)
	}

	return contacts, unresolved, nil
}
