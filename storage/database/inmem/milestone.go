package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/milestone"
)

type milestoneRepository struct {
	db *DB
}

var _ milestone.Repository = (*milestoneRepository)(nil) // interface compliance check

func NewMilestoneRepository(db *DB) *milestoneRepository {
	return &milestoneRepository{db: db}
}

func (repo *milestoneRepository) CreateMilestone(ctx context.Context, m milestone.Milestone) (milestone.Milestone, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	m.ID = uuid.New().String()
	repo.db.milestones[m.ID] = &m
	return m, nil
}

func (repo *milestoneRepository) GetMilestone(ctx context.Context, id string) (milestone.Milestone, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if m, ok := repo.db.milestones[id]; ok {
		return *m, nil
	}
	return milestone.Milestone{}, milestone.ErrNotFound
}

func (repo *milestoneRepository) QueryMilestones(ctx context.Context, filter milestone.QueryFilter, ordering ...core.DBOrdering) ([]milestone.Milestone, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ms := make([]milestone.Milestone, 0, len(repo.db.milestones))
	for _, m := range repo.db.milestones {
		if filter.Category != "" && m.Category != filter.Category {
			continue
		}
		if filter.AgeMonths > 0 && (m.MinMonths > filter.AgeMonths || m.MaxMonths < filter.AgeMonths) {
			continue
		}
		ms = append(ms, *m)
	}

	sort.Slice(ms, func(i, j int) bool {
		if ms[i].MinMonths != ms[j].MinMonths {
			return ms[i].MinMonths < ms[j].MinMonths
		}
		if ms[i].Category != ms[j].Category {
			return ms[i].Category < ms[j].Category
		}
		return ms[i].Title < ms[j].Title
	})
	return ms, nil
}

func (repo *milestoneRepository) CreateAchievement(ctx context.Context, ach milestone.Achievement) (milestone.Achievement, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ach.ID = uuid.New().String()
	repo.db.achievements[ach.ID] = &ach
	return ach, nil
}

func (repo *milestoneRepository) QueryAchievements(ctx context.Context, childID string) ([]milestone.Achievement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	achs := make([]milestone.Achievement, 0)
	for _, ach := range repo.db.achievements {
		if ach.ChildID == childID {
			achs = append(achs, *ach)
		}
	}
	sort.Slice(achs, func(i, j int) bool { return achs[i].AchievedAt.Before(achs[j].AchievedAt) })
	return achs, nil
}

func (repo *milestoneRepository) AchievementExists(ctx context.Context, childID, milestoneID string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, ach := range repo.db.achievements {
		if ach.ChildID == childID && ach.MilestoneID == milestoneID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *milestoneRepository) GetAchievement(ctx context.Context, id string) (milestone.Achievement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ach, ok := repo.db.achievements[id]; ok {
		return *ach, nil
	}
	return milestone.Achievement{}, milestone.ErrNotFound
}

func (repo *milestoneRepository) DeleteAchievement(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.achievements, id)
	return nil
}
