package sync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/message"
	"github.com/trezcool/malezi/core/milestone"
	"github.com/trezcool/malezi/core/observation"
	"github.com/trezcool/malezi/core/shift"
	"github.com/trezcool/malezi/core/user"
)

var errUnsupported = errors.New("unsupported model/action combination")

type (
	Repository interface {
		CreateLogEntry(ctx context.Context, entry LogEntry) (LogEntry, error)
		QueryLogEntries(ctx context.Context, userID string) ([]LogEntry, error)
	}

	// Service replays a client's offline queue against the domain services.
	// Operations run serially in request order; a failure is recorded and
	// replay moves on. Last write wins; there is no conflict resolution.
	Service interface {
		Replay(ctx context.Context, actor user.User, ops []Operation) ([]Result, error)
		History(ctx context.Context, actor user.User) ([]LogEntry, error)
	}

	service struct {
		repo     Repository
		obsSvc   observation.Service
		mlstSvc  milestone.Service
		msgSvc   message.Service
		shiftSvc shift.Service
		validate *validator.Validate
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	obsSvc observation.Service,
	mlstSvc milestone.Service,
	msgSvc message.Service,
	shiftSvc shift.Service,
	validate *validator.Validate,
	logger core.Logger,
) Service {
	return &service{
		repo:     repo,
		obsSvc:   obsSvc,
		mlstSvc:  mlstSvc,
		msgSvc:   msgSvc,
		shiftSvc: shiftSvc,
		validate: validate,
		logger:   logger,
	}
}

func (svc *service) Replay(ctx context.Context, actor user.User, ops []Operation) ([]Result, error) {
	results := make([]Result, 0, len(ops))
	for i := range ops {
		op := ops[i]
		res := Result{ClientID: op.ClientID, Status: StatusApplied}

		objectID, err := svc.apply(ctx, actor, op)
		if err != nil {
			res.Status = StatusFailed
			res.Error = err.Error()
		} else {
			res.ObjectID = objectID
		}

		entry := LogEntry{
			UserID:     actor.ID,
			ClientID:   op.ClientID,
			Model:      op.Model,
			Action:     op.Action,
			Status:     res.Status,
			Error:      null.NewString(res.Error, res.Error != ""),
			ClientTime: null.NewTime(op.ClientTime, !op.ClientTime.IsZero()),
			CreatedAt:  time.Now().UTC(),
		}
		if _, err = svc.repo.CreateLogEntry(ctx, entry); err != nil {
			// the replay outcome still stands; only the audit trail is degraded
			svc.logger.Error("writing sync log entry", err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (svc *service) History(ctx context.Context, actor user.User) ([]LogEntry, error) {
	entries, err := svc.repo.QueryLogEntries(ctx, actor.ID)
	return entries, errors.Wrap(err, "querying sync log")
}

func (svc *service) apply(ctx context.Context, actor user.User, op Operation) (string, error) {
	if err := op.Validate(svc.validate); err != nil {
		return "", err
	}

	switch op.Model {
	case ModelObservation:
		return svc.applyObservation(ctx, actor, op)
	case ModelAchievement:
		return svc.applyAchievement(ctx, actor, op)
	case ModelMessage:
		return svc.applyMessage(ctx, actor, op)
	case ModelShift:
		return svc.applyShift(ctx, actor, op)
	}
	return "", errUnsupported
}

func (svc *service) applyObservation(ctx context.Context, actor user.User, op Operation) (string, error) {
	switch op.Action {
	case ActionCreate:
		var no observation.NewObservation
		if err := json.Unmarshal(op.Payload, &no); err != nil {
			return "", errors.Wrap(err, "decoding payload")
		}
		obs, err := svc.obsSvc.Create(ctx, actor, no)
		return obs.ID, err
	case ActionUpdate:
		var uo observation.UpdateObservation
		if err := json.Unmarshal(op.Payload, &uo); err != nil {
			return "", errors.Wrap(err, "decoding payload")
		}
		obs, err := svc.obsSvc.Update(ctx, actor, op.ObjectID, uo)
		return obs.ID, err
	case ActionDelete:
		return op.ObjectID, svc.obsSvc.Delete(ctx, actor, op.ObjectID)
	}
	return "", errUnsupported
}

func (svc *service) applyAchievement(ctx context.Context, actor user.User, op Operation) (string, error) {
	switch op.Action {
	case ActionCreate:
		var payload struct {
			ChildID string `json:"child_id"`
			milestone.NewAchievement
		}
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			return "", errors.Wrap(err, "decoding payload")
		}
		ach, err := svc.mlstSvc.RecordAchievement(ctx, actor, payload.ChildID, payload.NewAchievement)
		return ach.ID, err
	case ActionDelete:
		return op.ObjectID, svc.mlstSvc.RemoveAchievement(ctx, actor, op.ObjectID)
	}
	return "", errUnsupported
}

func (svc *service) applyMessage(ctx context.Context, actor user.User, op Operation) (string, error) {
	if op.Action != ActionCreate {
		return "", errUnsupported
	}
	var payload struct {
		ConversationID string `json:"conversation_id"`
		message.NewMessage
	}
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		return "", errors.Wrap(err, "decoding payload")
	}
	msg, err := svc.msgSvc.Send(ctx, actor, payload.ConversationID, payload.NewMessage)
	return msg.ID, err
}

func (svc *service) applyShift(ctx context.Context, actor user.User, op Operation) (string, error) {
	switch op.Action {
	case ActionCreate:
		var ci shift.ClockIn
		if err := json.Unmarshal(op.Payload, &ci); err != nil {
			return "", errors.Wrap(err, "decoding payload")
		}
		s, err := svc.shiftSvc.ClockIn(ctx, actor, ci)
		return s.ID, err
	case ActionUpdate: // clock out of the open shift
		s, err := svc.shiftSvc.ClockOut(ctx, actor)
		return s.ID, err
	}
	return "", errUnsupported
}
