package observation

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/activity"
	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/moderation"
	"github.com/trezcool/malezi/core/user"
)

var (
	ErrNotFound  = errors.New("observation not found")
	ErrForbidden = errors.New("permission denied")
	ErrEditOver  = core.NewValidationError(errors.New("observation can no longer be edited"))
)

type (
	Repository interface {
		CreateObservation(ctx context.Context, obs Observation) (Observation, error)
		GetObservation(ctx context.Context, id string) (Observation, error)
		// QueryObservations scopes results to the given families; nil means all.
		QueryObservations(ctx context.Context, filter QueryFilter, familyIDs []string, ordering ...core.DBOrdering) ([]Observation, error)
		UpdateObservation(ctx context.Context, obs Observation) (Observation, error)
		DeleteObservation(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, actor user.User, no NewObservation) (Observation, error)
		Query(ctx context.Context, actor user.User, filter QueryFilter, ordering ...core.DBOrdering) ([]Observation, error)
		GetByID(ctx context.Context, actor user.User, id string) (Observation, error)
		Update(ctx context.Context, actor user.User, id string, uo UpdateObservation) (Observation, error)
		Delete(ctx context.Context, actor user.User, id string) error
	}

	service struct {
		repo       Repository
		childSvc   child.Service
		modSvc     moderation.Service
		matcher    *moderation.Matcher
		validate   *validator.Validate
		emitter    *activity.Emitter
		editWindow time.Duration
		logger     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	childSvc child.Service,
	modSvc moderation.Service,
	matcher *moderation.Matcher,
	validate *validator.Validate,
	emitter *activity.Emitter,
	conf *core.Config,
	logger core.Logger,
) Service {
	return &service{
		repo:       repo,
		childSvc:   childSvc,
		modSvc:     modSvc,
		matcher:    matcher,
		validate:   validate,
		emitter:    emitter,
		editWindow: conf.ObservationEditWindow,
		logger:     logger,
	}
}

func (svc *service) Create(ctx context.Context, actor user.User, no NewObservation) (Observation, error) {
	if err := no.Validate(svc.validate); err != nil {
		return Observation{}, err
	}

	// loading the child enforces family scope; out of scope reads as not found
	if _, err := svc.childSvc.GetChild(ctx, actor, no.ChildID); err != nil {
		return Observation{}, err
	}

	obs := Observation{
		ChildID:   no.ChildID,
		AuthorID:  actor.ID,
		Category:  no.Category,
		Body:      no.Body,
		MediaURL:  null.NewString(no.MediaURL, no.MediaURL != ""),
		CreatedAt: time.Now().UTC(),
	}
	keyword, matched := svc.matcher.Match(no.Body)
	obs.Flagged = matched

	obs, err := svc.repo.CreateObservation(ctx, obs)
	if err != nil {
		return Observation{}, errors.Wrap(err, "creating observation")
	}

	if matched {
		if _, err = svc.modSvc.AutoFlag(ctx, moderation.ContentObservation, obs.ID, keyword); err != nil {
			svc.logger.Error("auto-flagging observation", err)
		}
	}

	svc.emitter.Publish(activity.Event{
		Type:     activity.ObservationCreated,
		ActorID:  actor.ID,
		ObjectID: obs.ID,
		Message:  obs.Category + " observation logged",
	})
	return obs, nil
}

func (svc *service) Query(ctx context.Context, actor user.User, filter QueryFilter, ordering ...core.DBOrdering) ([]Observation, error) {
	familyIDs, all, err := svc.childSvc.FamilyIDsFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if all {
		familyIDs = nil
	} else if len(familyIDs) == 0 {
		return []Observation{}, nil
	}
	filter.Clean()
	obs, err := svc.repo.QueryObservations(ctx, filter, familyIDs, ordering...)
	return obs, errors.Wrap(err, "querying observations")
}

func (svc *service) GetByID(ctx context.Context, actor user.User, id string) (Observation, error) {
	obs, err := svc.repo.GetObservation(ctx, id)
	if err != nil {
		return Observation{}, err
	}
	if _, err = svc.childSvc.GetChild(ctx, actor, obs.ChildID); err != nil {
		return Observation{}, ErrNotFound
	}
	return obs, nil
}

func (svc *service) Update(ctx context.Context, actor user.User, id string, uo UpdateObservation) (Observation, error) {
	if err := uo.Validate(svc.validate); err != nil {
		return Observation{}, err
	}

	obs, err := svc.GetByID(ctx, actor, id)
	if err != nil {
		return Observation{}, err
	}
	if obs.AuthorID != actor.ID {
		return Observation{}, ErrForbidden
	}
	if time.Now().UTC().After(obs.CreatedAt.Add(svc.editWindow)) {
		return Observation{}, ErrEditOver
	}

	if uo.Category != "" {
		obs.Category = uo.Category
	}
	if uo.Body != "" {
		obs.Body = uo.Body
	}
	if uo.MediaURL != "" {
		obs.MediaURL = null.StringFrom(uo.MediaURL)
	}
	obs.UpdatedAt = null.TimeFrom(time.Now().UTC())

	if kw, ok := svc.matcher.Match(obs.Body); ok && !obs.Flagged {
		obs.Flagged = true
		if _, err = svc.modSvc.AutoFlag(ctx, moderation.ContentObservation, obs.ID, kw); err != nil {
			svc.logger.Error("auto-flagging observation", err)
		}
	}

	obs, err = svc.repo.UpdateObservation(ctx, obs)
	return obs, errors.Wrap(err, "updating observation")
}

func (svc *service) Delete(ctx context.Context, actor user.User, id string) error {
	obs, err := svc.GetByID(ctx, actor, id)
	if err != nil {
		return err
	}
	if obs.AuthorID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}
	return errors.Wrap(svc.repo.DeleteObservation(ctx, id), "deleting observation")
}
