package milestone

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/user"
)

var (
	ErrNotFound        = errors.New("milestone not found")
	ErrAlreadyAchieved = core.NewValidationError(errors.New("milestone has already been recorded for this child"))
)

type (
	Repository interface {
		CreateMilestone(ctx context.Context, m Milestone) (Milestone, error)
		GetMilestone(ctx context.Context, id string) (Milestone, error)
		QueryMilestones(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Milestone, error)
		CreateAchievement(ctx context.Context, ach Achievement) (Achievement, error)
		QueryAchievements(ctx context.Context, childID string) ([]Achievement, error)
		AchievementExists(ctx context.Context, childID, milestoneID string) (bool, error)
		DeleteAchievement(ctx context.Context, id string) error
		GetAchievement(ctx context.Context, id string) (Achievement, error)
	}

	Service interface {
		CreateMilestone(ctx context.Context, nm NewMilestone) (Milestone, error)
		Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Milestone, error)
		GetByID(ctx context.Context, id string) (Milestone, error)
		RecordAchievement(ctx context.Context, actor user.User, childID string, na NewAchievement) (Achievement, error)
		AchievementsFor(ctx context.Context, actor user.User, childID string) ([]Achievement, error)
		RemoveAchievement(ctx context.Context, actor user.User, id string) error
		ProgressFor(ctx context.Context, actor user.User, childID string) (Progress, error)
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

func (svc *service) CreateMilestone(ctx context.Context, nm NewMilestone) (Milestone, error) {
	if err := nm.Validate(svc.validate); err != nil {
		return Milestone{}, err
	}
	m, err := svc.repo.CreateMilestone(ctx, Milestone{
		Category:    nm.Category,
		Title:       nm.Title,
		Description: nm.Description,
		MinMonths:   nm.MinMonths,
		MaxMonths:   nm.MaxMonths,
	})
	return m, errors.Wrap(err, "creating milestone")
}

func (svc *service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Milestone, error) {
	filter.Clean()
	ms, err := svc.repo.QueryMilestones(ctx, filter, ordering...)
	return ms, errors.Wrap(err, "querying milestones")
}

func (svc *service) GetByID(ctx context.Context, id string) (Milestone, error) {
	return svc.repo.GetMilestone(ctx, id)
}

func (svc *service) RecordAchievement(ctx context.Context, actor user.User, childID string, na NewAchievement) (Achievement, error) {
	if err := na.Validate(svc.validate); err != nil {
		return Achievement{}, err
	}

	if _, err := svc.childSvc.GetChild(ctx, actor, childID); err != nil {
		return Achievement{}, err
	}
	if _, err := svc.repo.GetMilestone(ctx, na.MilestoneID); err != nil {
		return Achievement{}, err
	}

	exists, err := svc.repo.AchievementExists(ctx, childID, na.MilestoneID)
	if err != nil {
		return Achievement{}, errors.Wrap(err, "checking achievement uniqueness")
	}
	if exists {
		return Achievement{}, ErrAlreadyAchieved
	}

	ach, err := svc.repo.CreateAchievement(ctx, Achievement{
		ChildID:     childID,
		MilestoneID: na.MilestoneID,
		RecordedBy:  actor.ID,
		Note:        null.NewString(na.Note, na.Note != ""),
		AchievedAt:  na.AchievedAt.UTC(),
		CreatedAt:   time.Now().UTC(),
	})
	return ach, errors.Wrap(err, "recording achievement")
}

func (svc *service) AchievementsFor(ctx context.Context, actor user.User, childID string) ([]Achievement, error) {
	if _, err := svc.childSvc.GetChild(ctx, actor, childID); err != nil {
		return nil, err
	}
	achs, err := svc.repo.QueryAchievements(ctx, childID)
	return achs, errors.Wrap(err, "querying achievements")
}

func (svc *service) RemoveAchievement(ctx context.Context, actor user.User, id string) error {
	ach, err := svc.repo.GetAchievement(ctx, id)
	if err != nil {
		return err
	}
	if _, err = svc.childSvc.GetChild(ctx, actor, ach.ChildID); err != nil {
		return err
	}
	if ach.RecordedBy != actor.ID && !actor.IsAdmin() {
		return child.ErrForbidden
	}
	return errors.Wrap(svc.repo.DeleteAchievement(ctx, id), "deleting achievement")
}

func (svc *service) ProgressFor(ctx context.Context, actor user.User, childID string) (Progress, error) {
	chd, err := svc.childSvc.GetChild(ctx, actor, childID)
	if err != nil {
		return Progress{}, err
	}
	age := chd.AgeMonths(time.Now().UTC())

	expected, err := svc.repo.QueryMilestones(ctx, QueryFilter{AgeMonths: age})
	if err != nil {
		return Progress{}, errors.Wrap(err, "querying expected milestones")
	}
	achs, err := svc.repo.QueryAchievements(ctx, childID)
	if err != nil {
		return Progress{}, errors.Wrap(err, "querying achievements")
	}

	achieved := make(map[string]struct{}, len(achs))
	for _, ach := range achs {
		achieved[ach.MilestoneID] = struct{}{}
	}
	prog := Progress{ChildID: childID, AgeMonths: age, Expected: len(expected)}
	for _, m := range expected {
		if _, ok := achieved[m.ID]; ok {
			prog.Achieved++
		}
	}
	return prog, nil
}
