package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/message"
)

type messageRepository struct {
	db *DB
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *DB) *messageRepository {
	return &messageRepository{db: db}
}

func (repo *messageRepository) CreateConversation(ctx context.Context, conv message.Conversation) (message.Conversation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	conv.ID = uuid.New().String()
	repo.db.conversations[conv.ID] = &conv
	return conv, nil
}

func (repo *messageRepository) GetConversation(ctx context.Context, id string) (message.Conversation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if conv, ok := repo.db.conversations[id]; ok {
		return *conv, nil
	}
	return message.Conversation{}, message.ErrNotFound
}

func (repo *messageRepository) QueryConversations(ctx context.Context, participantID string) ([]message.Conversation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	convs := make([]message.Conversation, 0)
	for _, conv := range repo.db.conversations {
		for _, id := range conv.ParticipantIDs {
			if id == participantID {
				convs = append(convs, *conv)
				break
			}
		}
	}
	sort.Slice(convs, func(i, j int) bool { return convs[i].CreatedAt.After(convs[j].CreatedAt) })
	return convs, nil
}

func (repo *messageRepository) CreateMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	msg.ID = uuid.New().String()
	repo.db.messages[msg.ID] = &msg
	return msg, nil
}

func (repo *messageRepository) QueryMessages(ctx context.Context, conversationID string, ordering ...core.DBOrdering) ([]message.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	msgs := make([]message.Message, 0)
	for _, msg := range repo.db.messages {
		if msg.ConversationID == conversationID {
			msgs = append(msgs, *msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return msgs, nil
}
