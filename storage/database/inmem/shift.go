package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/shift"
)

type shiftRepository struct {
	db *DB
}

var _ shift.Repository = (*shiftRepository)(nil) // interface compliance check

func NewShiftRepository(db *DB) *shiftRepository {
	return &shiftRepository{db: db}
}

func (repo *shiftRepository) CreateShift(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s.ID = uuid.New().String()
	repo.db.shifts[s.ID] = &s
	return s, nil
}

func (repo *shiftRepository) GetShift(ctx context.Context, id string) (shift.Shift, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.shifts[id]; ok {
		return *s, nil
	}
	return shift.Shift{}, shift.ErrNotFound
}

func (repo *shiftRepository) GetOpenShift(ctx context.Context, nannyID string) (shift.Shift, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.shifts {
		if s.NannyID == nannyID && s.Open() {
			return *s, nil
		}
	}
	return shift.Shift{}, shift.ErrNotFound
}

func (repo *shiftRepository) QueryShifts(
	ctx context.Context,
	filter shift.QueryFilter,
	familyIDs []string,
	ordering ...core.DBOrdering,
) ([]shift.Shift, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var families map[string]struct{}
	if familyIDs != nil {
		families = make(map[string]struct{}, len(familyIDs))
		for _, id := range familyIDs {
			families[id] = struct{}{}
		}
	}

	shifts := make([]shift.Shift, 0, len(repo.db.shifts))
	for _, s := range repo.db.shifts {
		if families != nil {
			if _, ok := families[s.FamilyID]; !ok {
				continue
			}
		}
		if filter.NannyID != "" && s.NannyID != filter.NannyID {
			continue
		}
		if filter.FamilyID != "" && s.FamilyID != filter.FamilyID {
			continue
		}
		if !filter.From.IsZero() && s.ClockIn.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && s.ClockIn.After(filter.To) {
			continue
		}
		shifts = append(shifts, *s)
	}

	sort.Slice(shifts, func(i, j int) bool { return shifts[i].ClockIn.After(shifts[j].ClockIn) })
	return shifts, nil
}

func (repo *shiftRepository) UpdateShift(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.shifts[s.ID]; !ok {
		return shift.Shift{}, shift.ErrNotFound
	}
	repo.db.shifts[s.ID] = &s
	return s, nil
}
