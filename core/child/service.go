package child

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("child not found")
	ErrFamilyNotFound = errors.New("family not found")
	ErrForbidden      = errors.New("permission denied")
)

type (
	Repository interface {
		CreateFamily(ctx context.Context, fam Family) (Family, error)
		GetFamily(ctx context.Context, id string) (Family, error)
		// QueryFamilies returns all families when ids is nil.
		QueryFamilies(ctx context.Context, ids []string) ([]Family, error)
		DeleteFamily(ctx context.Context, id string) error

		AddMember(ctx context.Context, m Membership) error
		RemoveMember(ctx context.Context, familyID, userID string) error
		QueryMembers(ctx context.Context, familyID string) ([]Membership, error)
		QueryMemberships(ctx context.Context, userID string) ([]Membership, error)

		AddAssignment(ctx context.Context, a Assignment) error
		RemoveAssignment(ctx context.Context, familyID, nannyID string) error
		QueryFamilyAssignments(ctx context.Context, familyID string) ([]Assignment, error)
		QueryNannyAssignments(ctx context.Context, nannyID string) ([]Assignment, error)

		CreateChild(ctx context.Context, c Child) (Child, error)
		GetChild(ctx context.Context, filter GetFilter) (Child, error)
		// QueryChildren returns all children when familyIDs is nil.
		QueryChildren(ctx context.Context, familyIDs []string) ([]Child, error)
		UpdateChild(ctx context.Context, c Child) (Child, error)
		DeleteChild(ctx context.Context, id string) error
	}

	Service interface {
		CreateFamily(ctx context.Context, actor user.User, nf NewFamily) (Family, error)
		GetFamily(ctx context.Context, actor user.User, id string) (Family, error)
		QueryFamilies(ctx context.Context, actor user.User) ([]Family, error)
		AddMember(ctx context.Context, actor user.User, familyID string, nm NewMember) error
		RemoveMember(ctx context.Context, actor user.User, familyID, userID string) error
		Members(ctx context.Context, actor user.User, familyID string) ([]Membership, error)
		AssignNanny(ctx context.Context, familyID, nannyID string) error
		UnassignNanny(ctx context.Context, familyID, nannyID string) error

		CreateChild(ctx context.Context, actor user.User, nc NewChild) (Child, error)
		GetChild(ctx context.Context, actor user.User, id string) (Child, error)
		QueryChildren(ctx context.Context, actor user.User) ([]Child, error)
		UpdateChild(ctx context.Context, actor user.User, id string, uc UpdateChild) (Child, error)
		DeleteChild(ctx context.Context, actor user.User, id string) error

		// FamilyIDsFor resolves the family scope of usr: the families they are a
		// member of (parent) plus the families they are assigned to (nanny).
		// all is true for admins; ids is nil then.
		FamilyIDsFor(ctx context.Context, usr user.User) (ids []string, all bool, err error)
		// CanAccessFamily reports whether usr's scope covers the family.
		CanAccessFamily(ctx context.Context, usr user.User, familyID string) (bool, error)
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository) Service {
	return &service{repo: repo, usrRepo: usrRepo}
}

func (svc *service) CreateFamily(ctx context.Context, actor user.User, nf NewFamily) (Family, error) {
	now := time.Now().UTC()
	fam, err := svc.repo.CreateFamily(ctx, Family{Name: nf.Name, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return Family{}, err
	}
	if actor.IsParent() {
		m := Membership{FamilyID: fam.ID, UserID: actor.ID, Relation: nf.Relation}
		if err = svc.repo.AddMember(ctx, m); err != nil {
			return Family{}, errors.Wrap(err, "adding creator membership")
		}
	}
	return fam, nil
}

func (svc *service) GetFamily(ctx context.Context, actor user.User, id string) (Family, error) {
	ok, err := svc.CanAccessFamily(ctx, actor, id)
	if err != nil {
		return Family{}, err
	}
	if !ok {
		return Family{}, ErrFamilyNotFound
	}
	return svc.repo.GetFamily(ctx, id)
}

func (svc *service) QueryFamilies(ctx context.Context, actor user.User) ([]Family, error) {
	ids, all, err := svc.FamilyIDsFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if all {
		ids = nil
	} else if len(ids) == 0 {
		return []Family{}, nil
	}
	return svc.repo.QueryFamilies(ctx, ids)
}

func (svc *service) AddMember(ctx context.Context, actor user.User, familyID string, nm NewMember) error {
	if err := svc.checkFamilyWriteAccess(ctx, actor, familyID); err != nil {
		return err
	}
	usr, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: nm.UserID})
	if err != nil {
		return err
	}
	if !usr.IsParent() {
		return errors.New("only parents can be family members")
	}
	return svc.repo.AddMember(ctx, Membership{FamilyID: familyID, UserID: nm.UserID, Relation: nm.Relation})
}

func (svc *service) RemoveMember(ctx context.Context, actor user.User, familyID, userID string) error {
	if err := svc.checkFamilyWriteAccess(ctx, actor, familyID); err != nil {
		return err
	}
	return svc.repo.RemoveMember(ctx, familyID, userID)
}

func (svc *service) Members(ctx context.Context, actor user.User, familyID string) ([]Membership, error) {
	ok, err := svc.CanAccessFamily(ctx, actor, familyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrFamilyNotFound
	}
	return svc.repo.QueryMembers(ctx, familyID)
}

func (svc *service) AssignNanny(ctx context.Context, familyID, nannyID string) error {
	if _, err := svc.repo.GetFamily(ctx, familyID); err != nil {
		return err
	}
	usr, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: nannyID})
	if err != nil {
		return err
	}
	if !usr.IsNanny() {
		return errors.New("user is not a nanny")
	}
	return svc.repo.AddAssignment(ctx, Assignment{FamilyID: familyID, NannyID: nannyID, CreatedAt: time.Now().UTC()})
}

func (svc *service) UnassignNanny(ctx context.Context, familyID, nannyID string) error {
	return svc.repo.RemoveAssignment(ctx, familyID, nannyID)
}

func (svc *service) CreateChild(ctx context.Context, actor user.User, nc NewChild) (Child, error) {
	if err := svc.checkFamilyWriteAccess(ctx, actor, nc.FamilyID); err != nil {
		return Child{}, err
	}
	now := time.Now().UTC()
	c := Child{
		FamilyID:  nc.FamilyID,
		Name:      nc.Name,
		BirthDate: nc.BirthDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.Allergies = null.NewString(nc.Allergies, nc.Allergies != "")
	c.Notes = null.NewString(nc.Notes, nc.Notes != "")
	return svc.repo.CreateChild(ctx, c)
}

func (svc *service) GetChild(ctx context.Context, actor user.User, id string) (Child, error) {
	c, err := svc.repo.GetChild(ctx, GetFilter{ID: id})
	if err != nil {
		return Child{}, err
	}
	ok, err := svc.CanAccessFamily(ctx, actor, c.FamilyID)
	if err != nil {
		return Child{}, err
	}
	if !ok {
		// do not leak existence
		return Child{}, ErrNotFound
	}
	return c, nil
}

func (svc *service) QueryChildren(ctx context.Context, actor user.User) ([]Child, error) {
	ids, all, err := svc.FamilyIDsFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if all {
		ids = nil
	} else if len(ids) == 0 {
		return []Child{}, nil
	}
	return svc.repo.QueryChildren(ctx, ids)
}

func (svc *service) UpdateChild(ctx context.Context, actor user.User, id string, uc UpdateChild) (Child, error) {
	c, err := svc.GetChild(ctx, actor, id)
	if err != nil {
		return Child{}, err
	}
	if err = svc.checkFamilyWriteAccess(ctx, actor, c.FamilyID); err != nil {
		return Child{}, err
	}

	c.Name = uc.Name
	c.BirthDate = uc.BirthDate
	if uc.Allergies != nil {
		c.Allergies = null.NewString(*uc.Allergies, *uc.Allergies != "")
	}
	if uc.Notes != nil {
		c.Notes = null.NewString(*uc.Notes, *uc.Notes != "")
	}
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateChild(ctx, c)
}

func (svc *service) DeleteChild(ctx context.Context, actor user.User, id string) error {
	c, err := svc.GetChild(ctx, actor, id)
	if err != nil {
		return err
	}
	if err = svc.checkFamilyWriteAccess(ctx, actor, c.FamilyID); err != nil {
		return err
	}
	return svc.repo.DeleteChild(ctx, id)
}

func (svc *service) FamilyIDsFor(ctx context.Context, usr user.User) ([]string, bool, error) {
	if usr.IsAdmin() {
		return nil, true, nil
	}

	seen := make(map[string]struct{})
	var ids []string

	if usr.IsParent() {
		members, err := svc.repo.QueryMemberships(ctx, usr.ID)
		if err != nil {
			return nil, false, errors.Wrap(err, "querying memberships")
		}
		for _, m := range members {
			if _, ok := seen[m.FamilyID]; !ok {
				seen[m.FamilyID] = struct{}{}
				ids = append(ids, m.FamilyID)
			}
		}
	}
	if usr.IsNanny() {
		assignments, err := svc.repo.QueryNannyAssignments(ctx, usr.ID)
		if err != nil {
			return nil, false, errors.Wrap(err, "querying assignments")
		}
		for _, a := range assignments {
			if _, ok := seen[a.FamilyID]; !ok {
				seen[a.FamilyID] = struct{}{}
				ids = append(ids, a.FamilyID)
			}
		}
	}
	return ids, false, nil
}

func (svc *service) CanAccessFamily(ctx context.Context, usr user.User, familyID string) (bool, error) {
	ids, all, err := svc.FamilyIDsFor(ctx, usr)
	if err != nil {
		return false, err
	}
	if all {
		return true, nil
	}
	for _, id := range ids {
		if id == familyID {
			return true, nil
		}
	}
	return false, nil
}

// checkFamilyWriteAccess allows admins and member parents to modify a family
// and its children. Nannies observe; they do not manage profiles.
func (svc *service) checkFamilyWriteAccess(ctx context.Context, actor user.User, familyID string) error {
	if actor.IsAdmin() {
		return nil
	}
	if !actor.IsParent() {
		return ErrForbidden
	}
	members, err := svc.repo.QueryMemberships(ctx, actor.ID)
	if err != nil {
		return errors.Wrap(err, "querying memberships")
	}
	for _, m := range members {
		if m.FamilyID == familyID {
			return nil
		}
	}
	return ErrForbidden
}
