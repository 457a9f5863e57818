package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/malezi/core/moderation"
	"github.com/trezcool/malezi/core/report"
)

type reportRepository struct {
	db *DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) CountUsersByRole(ctx context.Context) (map[string]int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(map[string]int)
	for _, usr := range repo.db.users {
		for _, role := range usr.Roles {
			counts[role]++
		}
	}
	return counts, nil
}

func (repo *reportRepository) CountChildren(ctx context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.children), nil
}

func (repo *reportRepository) CountObservations(ctx context.Context, from, to time.Time) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var cnt int
	for _, obs := range repo.db.observations {
		if !obs.CreatedAt.Before(from) && !obs.CreatedAt.After(to) {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *reportRepository) CountMessages(ctx context.Context, from, to time.Time) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var cnt int
	for _, msg := range repo.db.messages {
		if !msg.CreatedAt.Before(from) && !msg.CreatedAt.After(to) {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *reportRepository) CountPendingFlags(ctx context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var cnt int
	for _, flag := range repo.db.flags {
		if flag.Status == moderation.StatusPending {
			cnt++
		}
	}
	return cnt, nil
}
