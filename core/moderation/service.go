package moderation

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/activity"
	"github.com/trezcool/malezi/core/user"
)

var (
	ErrNotFound        = errors.New("flag not found")
	ErrAlreadyResolved = core.NewValidationError(errors.New("flag has already been resolved"))
)

type (
	Repository interface {
		CreateFlag(ctx context.Context, flag Flag) (Flag, error)
		GetFlag(ctx context.Context, id string) (Flag, error)
		QueryFlags(ctx context.Context, status string, ordering ...core.DBOrdering) ([]Flag, error)
		UpdateFlag(ctx context.Context, flag Flag) (Flag, error)
		// RedactContent replaces the body of the flagged content in place.
		RedactContent(ctx context.Context, contentType, contentID string) error
	}

	Service interface {
		// AutoFlag records a keyword hit on freshly created content.
		AutoFlag(ctx context.Context, contentType, contentID, keyword string) (Flag, error)
		Flag(ctx context.Context, actor user.User, nf NewFlag) (Flag, error)
		Pending(ctx context.Context) ([]Flag, error)
		GetByID(ctx context.Context, id string) (Flag, error)
		Resolve(ctx context.Context, actor user.User, id string, rf ResolveFlag) (Flag, error)
	}

	service struct {
		repo     Repository
		validate *validator.Validate
		emitter  *activity.Emitter
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, validate *validator.Validate, emitter *activity.Emitter) Service {
	return &service{
		repo:     repo,
		validate: validate,
		emitter:  emitter,
	}
}

func (svc *service) AutoFlag(ctx context.Context, contentType, contentID, keyword string) (Flag, error) {
	flag, err := svc.repo.CreateFlag(ctx, Flag{
		ContentType: contentType,
		ContentID:   contentID,
		Reason:      ReasonKeyword,
		Keyword:     null.StringFrom(keyword),
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return Flag{}, errors.Wrap(err, "creating keyword flag")
	}

	svc.emitter.Publish(activity.Event{
		Type:     activity.ContentFlagged,
		ObjectID: flag.ID,
		Message:  contentType + " flagged for keyword " + keyword,
	})
	return flag, nil
}

func (svc *service) Flag(ctx context.Context, actor user.User, nf NewFlag) (Flag, error) {
	if err := nf.Validate(svc.validate); err != nil {
		return Flag{}, err
	}

	flag, err := svc.repo.CreateFlag(ctx, Flag{
		ContentType: nf.ContentType,
		ContentID:   nf.ContentID,
		Reason:      ReasonManual,
		FlaggedBy:   null.StringFrom(actor.ID),
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return Flag{}, errors.Wrap(err, "creating flag")
	}

	svc.emitter.Publish(activity.Event{
		Type:     activity.ContentFlagged,
		ActorID:  actor.ID,
		ObjectID: flag.ID,
		Message:  nf.ContentType + " flagged by " + actor.Username,
	})
	return flag, nil
}

func (svc *service) Pending(ctx context.Context) ([]Flag, error) {
	flags, err := svc.repo.QueryFlags(ctx, StatusPending)
	return flags, errors.Wrap(err, "querying pending flags")
}

func (svc *service) GetByID(ctx context.Context, id string) (Flag, error) {
	return svc.repo.GetFlag(ctx, id)
}

func (svc *service) Resolve(ctx context.Context, actor user.User, id string, rf ResolveFlag) (Flag, error) {
	if err := rf.Validate(svc.validate); err != nil {
		return Flag{}, err
	}

	flag, err := svc.repo.GetFlag(ctx, id)
	if err != nil {
		return Flag{}, err
	}
	if flag.Status != StatusPending {
		return Flag{}, ErrAlreadyResolved
	}

	switch rf.Action {
	case ActionApprove:
		flag.Status = StatusApproved
	case ActionRemove:
		if err = svc.repo.RedactContent(ctx, flag.ContentType, flag.ContentID); err != nil {
			return Flag{}, errors.Wrap(err, "redacting content")
		}
		flag.Status = StatusRemoved
	}
	flag.ResolvedBy = null.StringFrom(actor.ID)
	flag.ResolvedAt = null.TimeFrom(time.Now().UTC())

	if flag, err = svc.repo.UpdateFlag(ctx, flag); err != nil {
		return Flag{}, errors.Wrap(err, "updating flag")
	}

	svc.emitter.Publish(activity.Event{
		Type:     activity.FlagResolved,
		ActorID:  actor.ID,
		ObjectID: flag.ID,
		Message:  "flag " + flag.Status,
	})
	return flag, nil
}
