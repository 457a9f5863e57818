package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/moderation"
)

type moderationRepository struct {
	db *DB
}

var _ moderation.Repository = (*moderationRepository)(nil) // interface compliance check

func NewModerationRepository(db *DB) *moderationRepository {
	return &moderationRepository{db: db}
}

func (repo *moderationRepository) CreateFlag(ctx context.Context, flag moderation.Flag) (moderation.Flag, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	flag.ID = uuid.New().String()
	repo.db.flags[flag.ID] = &flag
	return flag, nil
}

func (repo *moderationRepository) GetFlag(ctx context.Context, id string) (moderation.Flag, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if flag, ok := repo.db.flags[id]; ok {
		return *flag, nil
	}
	return moderation.Flag{}, moderation.ErrNotFound
}

func (repo *moderationRepository) QueryFlags(ctx context.Context, status string, ordering ...core.DBOrdering) ([]moderation.Flag, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	flags := make([]moderation.Flag, 0, len(repo.db.flags))
	for _, flag := range repo.db.flags {
		if status != "" && flag.Status != status {
			continue
		}
		flags = append(flags, *flag)
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].CreatedAt.Before(flags[j].CreatedAt) })
	return flags, nil
}

func (repo *moderationRepository) UpdateFlag(ctx context.Context, flag moderation.Flag) (moderation.Flag, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.flags[flag.ID]; !ok {
		return moderation.Flag{}, moderation.ErrNotFound
	}
	repo.db.flags[flag.ID] = &flag
	return flag, nil
}

func (repo *moderationRepository) RedactContent(ctx context.Context, contentType, contentID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	switch contentType {
	case moderation.ContentObservation:
		if obs, ok := repo.db.observations[contentID]; ok {
			obs.Body = moderation.RedactedBody
		}
	case moderation.ContentMessage:
		if msg, ok := repo.db.messages[contentID]; ok {
			msg.Body = moderation.RedactedBody
		}
	default:
		return errors.Errorf("unknown content type %q", contentType)
	}
	return nil
}
