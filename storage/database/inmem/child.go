package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/malezi/core/child"
)

type childRepository struct {
	db *DB
}

var _ child.Repository = (*childRepository)(nil) // interface compliance check

func NewChildRepository(db *DB) *childRepository {
	return &childRepository{db: db}
}

func (repo *childRepository) CreateFamily(ctx context.Context, fam child.Family) (child.Family, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	fam.ID = uuid.New().String()
	repo.db.families[fam.ID] = &fam
	return fam, nil
}

func (repo *childRepository) GetFamily(ctx context.Context, id string) (child.Family, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if fam, ok := repo.db.families[id]; ok {
		return *fam, nil
	}
	return child.Family{}, child.ErrFamilyNotFound
}

func (repo *childRepository) QueryFamilies(ctx context.Context, ids []string) ([]child.Family, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var included map[string]struct{}
	if ids != nil {
		included = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			included[id] = struct{}{}
		}
	}

	fams := make([]child.Family, 0, len(repo.db.families))
	for _, fam := range repo.db.families {
		if included != nil {
			if _, ok := included[fam.ID]; !ok {
				continue
			}
		}
		fams = append(fams, *fam)
	}
	sort.Slice(fams, func(i, j int) bool { return fams[i].Name < fams[j].Name })
	return fams, nil
}

func (repo *childRepository) DeleteFamily(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.families, id)
	delete(repo.db.members, id)
	delete(repo.db.assignments, id)
	for cid, c := range repo.db.children {
		if c.FamilyID == id {
			delete(repo.db.children, cid)
		}
	}
	return nil
}

func (repo *childRepository) AddMember(ctx context.Context, m child.Membership) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	members := repo.db.members[m.FamilyID]
	for i, existing := range members {
		if existing.UserID == m.UserID {
			members[i] = m
			return nil
		}
	}
	repo.db.members[m.FamilyID] = append(members, m)
	return nil
}

func (repo *childRepository) RemoveMember(ctx context.Context, familyID, userID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	members := repo.db.members[familyID]
	for i, m := range members {
		if m.UserID == userID {
			repo.db.members[familyID] = append(members[:i], members[i+1:]...)
			break
		}
	}
	return nil
}

func (repo *childRepository) QueryMembers(ctx context.Context, familyID string) ([]child.Membership, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]child.Membership{}, repo.db.members[familyID]...), nil
}

func (repo *childRepository) QueryMemberships(ctx context.Context, userID string) ([]child.Membership, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var memberships []child.Membership
	for _, members := range repo.db.members {
		for _, m := range members {
			if m.UserID == userID {
				memberships = append(memberships, m)
			}
		}
	}
	return memberships, nil
}

func (repo *childRepository) AddAssignment(ctx context.Context, a child.Assignment) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	assignments := repo.db.assignments[a.FamilyID]
	for _, existing := range assignments {
		if existing.NannyID == a.NannyID {
			return nil
		}
	}
	repo.db.assignments[a.FamilyID] = append(assignments, a)
	return nil
}

func (repo *childRepository) RemoveAssignment(ctx context.Context, familyID, nannyID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	assignments := repo.db.assignments[familyID]
	for i, a := range assignments {
		if a.NannyID == nannyID {
			repo.db.assignments[familyID] = append(assignments[:i], assignments[i+1:]...)
			break
		}
	}
	return nil
}

func (repo *childRepository) QueryFamilyAssignments(ctx context.Context, familyID string) ([]child.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]child.Assignment{}, repo.db.assignments[familyID]...), nil
}

func (repo *childRepository) QueryNannyAssignments(ctx context.Context, nannyID string) ([]child.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var assignments []child.Assignment
	for _, famAssignments := range repo.db.assignments {
		for _, a := range famAssignments {
			if a.NannyID == nannyID {
				assignments = append(assignments, a)
			}
		}
	}
	return assignments, nil
}

func (repo *childRepository) CreateChild(ctx context.Context, c child.Child) (child.Child, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c.ID = uuid.New().String()
	repo.db.children[c.ID] = &c
	return c, nil
}

func (repo *childRepository) GetChild(ctx context.Context, filter child.GetFilter) (child.Child, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	c, ok := repo.db.children[filter.ID]
	if !ok {
		return child.Child{}, child.ErrNotFound
	}
	if filter.FamilyID != "" && c.FamilyID != filter.FamilyID {
		return child.Child{}, child.ErrNotFound
	}
	return *c, nil
}

func (repo *childRepository) QueryChildren(ctx context.Context, familyIDs []string) ([]child.Child, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var included map[string]struct{}
	if familyIDs != nil {
		included = make(map[string]struct{}, len(familyIDs))
		for _, id := range familyIDs {
			included[id] = struct{}{}
		}
	}

	children := make([]child.Child, 0, len(repo.db.children))
	for _, c := range repo.db.children {
		if included != nil {
			if _, ok := included[c.FamilyID]; !ok {
				continue
			}
		}
		children = append(children, *c)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children, nil
}

func (repo *childRepository) UpdateChild(ctx context.Context, c child.Child) (child.Child, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.children[c.ID]; !ok {
		return child.Child{}, child.ErrNotFound
	}
	repo.db.children[c.ID] = &c
	return c, nil
}

func (repo *childRepository) DeleteChild(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.children, id)
	return nil
}
