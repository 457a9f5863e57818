package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	appsync "github.com/trezcool/malezi/core/sync"
)

type syncRepository struct {
	db *DB
}

var _ appsync.Repository = (*syncRepository)(nil) // interface compliance check

func NewSyncRepository(db *DB) *syncRepository {
	return &syncRepository{db: db}
}

func (repo *syncRepository) CreateLogEntry(ctx context.Context, entry appsync.LogEntry) (appsync.LogEntry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	entry.ID = uuid.New().String()
	repo.db.syncLog[entry.ID] = &entry
	return entry, nil
}

func (repo *syncRepository) QueryLogEntries(ctx context.Context, userID string) ([]appsync.LogEntry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]appsync.LogEntry, 0)
	for _, entry := range repo.db.syncLog {
		if entry.UserID == userID {
			entries = append(entries, *entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	return entries, nil
}
