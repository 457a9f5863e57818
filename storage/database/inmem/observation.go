package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/observation"
)

type observationRepository struct {
	db *DB
}

var _ observation.Repository = (*observationRepository)(nil) // interface compliance check

func NewObservationRepository(db *DB) *observationRepository {
	return &observationRepository{db: db}
}

func (repo *observationRepository) CreateObservation(ctx context.Context, obs observation.Observation) (observation.Observation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	obs.ID = uuid.New().String()
	repo.db.observations[obs.ID] = &obs
	return obs, nil
}

func (repo *observationRepository) GetObservation(ctx context.Context, id string) (observation.Observation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if obs, ok := repo.db.observations[id]; ok {
		return *obs, nil
	}
	return observation.Observation{}, observation.ErrNotFound
}

func (repo *observationRepository) QueryObservations(
	ctx context.Context,
	filter observation.QueryFilter,
	familyIDs []string,
	ordering ...core.DBOrdering,
) ([]observation.Observation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var families map[string]struct{}
	if familyIDs != nil {
		families = make(map[string]struct{}, len(familyIDs))
		for _, id := range familyIDs {
			families[id] = struct{}{}
		}
	}

	obs := make([]observation.Observation, 0, len(repo.db.observations))
	for _, o := range repo.db.observations {
		if families != nil {
			c, ok := repo.db.children[o.ChildID]
			if !ok {
				continue
			}
			if _, ok = families[c.FamilyID]; !ok {
				continue
			}
		}
		if filter.ChildID != "" && o.ChildID != filter.ChildID {
			continue
		}
		if filter.Category != "" && o.Category != filter.Category {
			continue
		}
		if !filter.From.IsZero() && o.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && o.CreatedAt.After(filter.To) {
			continue
		}
		obs = append(obs, *o)
	}

	// newest first, matching the SQL default
	sort.Slice(obs, func(i, j int) bool { return obs[i].CreatedAt.After(obs[j].CreatedAt) })
	return obs, nil
}

func (repo *observationRepository) UpdateObservation(ctx context.Context, obs observation.Observation) (observation.Observation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.observations[obs.ID]; !ok {
		return observation.Observation{}, observation.ErrNotFound
	}
	repo.db.observations[obs.ID] = &obs
	return obs, nil
}

func (repo *observationRepository) DeleteObservation(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.observations, id)
	return nil
}
