package shift

import (
	"context"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/user"
)

var (
	ErrNotFound  = errors.New("shift not found")
	ErrForbidden = errors.New("permission denied")
	ErrShiftOpen = core.NewValidationError(errors.New("an open shift already exists; clock out first"))
	ErrNoOpen    = core.NewValidationError(errors.New("no open shift to clock out of"))
)

type (
	Repository interface {
		CreateShift(ctx context.Context, s Shift) (Shift, error)
		GetShift(ctx context.Context, id string) (Shift, error)
		// GetOpenShift returns the nanny's running shift, ErrNotFound when none.
		GetOpenShift(ctx context.Context, nannyID string) (Shift, error)
		QueryShifts(ctx context.Context, filter QueryFilter, familyIDs []string, ordering ...core.DBOrdering) ([]Shift, error)
		UpdateShift(ctx context.Context, s Shift) (Shift, error)
	}

	Service interface {
		ClockIn(ctx context.Context, actor user.User, ci ClockIn) (Shift, error)
		ClockOut(ctx context.Context, actor user.User) (Shift, error)
		Query(ctx context.Context, actor user.User, filter QueryFilter, ordering ...core.DBOrdering) ([]Shift, error)
		GetByID(ctx context.Context, actor user.User, id string) (Shift, error)
		// Totals sums completed hours per nanny within the filter window.
		Totals(ctx context.Context, actor user.User, filter QueryFilter) ([]Total, error)
	}

	service struct {
		repo     Repository
		childSvc child.Service
		validate *validator.Validate
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, childSvc child.Service, validate *validator.Validate) Service {
	return &service{
		repo:     repo,
		childSvc: childSvc,
		validate: validate,
	}
}

func (svc *service) ClockIn(ctx context.Context, actor user.User, ci ClockIn) (Shift, error) {
	if err := ci.Validate(svc.validate); err != nil {
		return Shift{}, err
	}
	if !actor.IsNanny() {
		return Shift{}, ErrForbidden
	}
	if ok, err := svc.childSvc.CanAccessFamily(ctx, actor, ci.FamilyID); err != nil {
		return Shift{}, err
	} else if !ok {
		return Shift{}, child.ErrFamilyNotFound
	}

	if _, err := svc.repo.GetOpenShift(ctx, actor.ID); err == nil {
		return Shift{}, ErrShiftOpen
	} else if errors.Cause(err) != ErrNotFound {
		return Shift{}, errors.Wrap(err, "checking open shift")
	}

	s, err := svc.repo.CreateShift(ctx, Shift{
		NannyID:  actor.ID,
		FamilyID: ci.FamilyID,
		ClockIn:  time.Now().UTC(),
		Note:     null.NewString(ci.Note, ci.Note != ""),
	})
	return s, errors.Wrap(err, "creating shift")
}

func (svc *service) ClockOut(ctx context.Context, actor user.User) (Shift, error) {
	s, err := svc.repo.GetOpenShift(ctx, actor.ID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Shift{}, ErrNoOpen
		}
		return Shift{}, errors.Wrap(err, "getting open shift")
	}

	s.ClockOut = null.TimeFrom(time.Now().UTC())
	s, err = svc.repo.UpdateShift(ctx, s)
	return s, errors.Wrap(err, "closing shift")
}

func (svc *service) Query(ctx context.Context, actor user.User, filter QueryFilter, ordering ...core.DBOrdering) ([]Shift, error) {
	filter.Clean()
	familyIDs, all, err := svc.childSvc.FamilyIDsFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if all {
		familyIDs = nil
	} else if len(familyIDs) == 0 {
		return []Shift{}, nil
	}
	// nannies only ever see their own shifts
	if actor.IsNanny() && !actor.IsAdmin() {
		filter.NannyID = actor.ID
	}
	shifts, err := svc.repo.QueryShifts(ctx, filter, familyIDs, ordering...)
	return shifts, errors.Wrap(err, "querying shifts")
}

func (svc *service) GetByID(ctx context.Context, actor user.User, id string) (Shift, error) {
	s, err := svc.repo.GetShift(ctx, id)
	if err != nil {
		return Shift{}, err
	}
	if s.NannyID != actor.ID {
		if ok, err := svc.childSvc.CanAccessFamily(ctx, actor, s.FamilyID); err != nil {
			return Shift{}, err
		} else if !ok {
			return Shift{}, ErrNotFound
		}
	}
	return s, nil
}

func (svc *service) Totals(ctx context.Context, actor user.User, filter QueryFilter) ([]Total, error) {
	shifts, err := svc.Query(ctx, actor, filter)
	if err != nil {
		return nil, err
	}
	return SumHours(shifts), nil
}

// SumHours groups completed shifts by nanny, rounding hours to 2 decimals.
func SumHours(shifts []Shift) []Total {
	byNanny := make(map[string]*Total)
	order := make([]string, 0)
	for _, s := range shifts {
		if s.Open() {
			continue
		}
		tot, ok := byNanny[s.NannyID]
		if !ok {
			tot = &Total{NannyID: s.NannyID}
			byNanny[s.NannyID] = tot
			order = append(order, s.NannyID)
		}
		tot.Shifts++
		tot.Hours += s.Hours()
	}

	totals := make([]Total, 0, len(order))
	for _, id := range order {
		tot := byNanny[id]
		tot.Hours = math.Round(tot.Hours*100) / 100
		totals = append(totals, *tot)
	}
	return totals
}
