package message

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/moderation"
	"github.com/trezcool/malezi/core/user"
)

var (
	ErrNotFound       = errors.New("conversation not found")
	ErrNotParticipant = errors.New("permission denied")
)

type (
	Repository interface {
		CreateConversation(ctx context.Context, conv Conversation) (Conversation, error)
		GetConversation(ctx context.Context, id string) (Conversation, error)
		QueryConversations(ctx context.Context, participantID string) ([]Conversation, error)
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		QueryMessages(ctx context.Context, conversationID string, ordering ...core.DBOrdering) ([]Message, error)
	}

	Service interface {
		Start(ctx context.Context, actor user.User, nc NewConversation) (Conversation, error)
		ConversationsFor(ctx context.Context, actor user.User) ([]Conversation, error)
		GetByID(ctx context.Context, actor user.User, id string) (Conversation, error)
		Send(ctx context.Context, actor user.User, conversationID string, nm NewMessage) (Message, error)
		MessagesFor(ctx context.Context, actor user.User, conversationID string) ([]Message, error)
	}

	service struct {
		repo     Repository
		usrSvc   user.Service
		modSvc   moderation.Service
		matcher  *moderation.Matcher
		validate *validator.Validate
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	usrSvc user.Service,
	modSvc moderation.Service,
	matcher *moderation.Matcher,
	validate *validator.Validate,
	logger core.Logger,
) Service {
	return &service{
		repo:     repo,
		usrSvc:   usrSvc,
		modSvc:   modSvc,
		matcher:  matcher,
		validate: validate,
		logger:   logger,
	}
}

func (svc *service) Start(ctx context.Context, actor user.User, nc NewConversation) (Conversation, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Conversation{}, err
	}

	// the creator is always a participant
	participants := []string{actor.ID}
	seen := map[string]struct{}{actor.ID: {}}
	for _, id := range nc.ParticipantIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		if _, err := svc.usrSvc.GetByID(ctx, id); err != nil {
			return Conversation{}, core.NewValidationError(err, core.FieldError{
				Field: "participant_ids",
				Error: "unknown user " + id,
			})
		}
		participants = append(participants, id)
		seen[id] = struct{}{}
	}
	if len(participants) < 2 {
		return Conversation{}, core.NewValidationError(nil, core.FieldError{
			Field: "participant_ids",
			Error: "a conversation needs at least one other participant",
		})
	}

	conv, err := svc.repo.CreateConversation(ctx, Conversation{
		Subject:        null.NewString(nc.Subject, nc.Subject != ""),
		CreatedBy:      actor.ID,
		CreatedAt:      time.Now().UTC(),
		ParticipantIDs: participants,
	})
	return conv, errors.Wrap(err, "creating conversation")
}

func (svc *service) ConversationsFor(ctx context.Context, actor user.User) ([]Conversation, error) {
	convs, err := svc.repo.QueryConversations(ctx, actor.ID)
	return convs, errors.Wrap(err, "querying conversations")
}

func (svc *service) GetByID(ctx context.Context, actor user.User, id string) (Conversation, error) {
	conv, err := svc.repo.GetConversation(ctx, id)
	if err != nil {
		return Conversation{}, err
	}
	if !svc.isParticipant(conv, actor) {
		// non-participants cannot tell the conversation exists
		return Conversation{}, ErrNotFound
	}
	return conv, nil
}

func (svc *service) Send(ctx context.Context, actor user.User, conversationID string, nm NewMessage) (Message, error) {
	if err := nm.Validate(svc.validate); err != nil {
		return Message{}, err
	}

	if _, err := svc.GetByID(ctx, actor, conversationID); err != nil {
		return Message{}, err
	}

	keyword, matched := svc.matcher.Match(nm.Body)
	msg, err := svc.repo.CreateMessage(ctx, Message{
		ConversationID: conversationID,
		SenderID:       actor.ID,
		Body:           nm.Body,
		Flagged:        matched,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		return Message{}, errors.Wrap(err, "creating message")
	}

	if matched {
		if _, err = svc.modSvc.AutoFlag(ctx, moderation.ContentMessage, msg.ID, keyword); err != nil {
			svc.logger.Error("auto-flagging message", err)
		}
	}
	return msg, nil
}

func (svc *service) MessagesFor(ctx context.Context, actor user.User, conversationID string) ([]Message, error) {
	if _, err := svc.GetByID(ctx, actor, conversationID); err != nil {
		return nil, err
	}
	msgs, err := svc.repo.QueryMessages(ctx, conversationID)
	return msgs, errors.Wrap(err, "querying messages")
}

func (svc *service) isParticipant(conv Conversation, usr user.User) bool {
	if usr.IsModerator() {
		return true
	}
	for _, id := range conv.ParticipantIDs {
		if id == usr.ID {
			return true
		}
	}
	return false
}
