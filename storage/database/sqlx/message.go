package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/message"
)

type conversationRow struct {
	ID        string      `db:"id"`
	Subject   null.String `db:"subject"`
	CreatedBy string      `db:"created_by"`
	CreatedAt null.Time   `db:"created_at"`
}

func (r conversationRow) toConversation() message.Conversation {
	return message.Conversation{
		ID:        r.ID,
		Subject:   r.Subject,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt.Time,
	}
}

type messageRow struct {
	ID             string      `db:"id"`
	ConversationID string      `db:"conversation_id"`
	SenderID       string      `db:"sender_id"`
	Body           null.String `db:"body"`
	Flagged        bool        `db:"flagged"`
	CreatedAt      null.Time   `db:"created_at"`
}

func (r messageRow) toMessage() message.Message {
	return message.Message{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		SenderID:       r.SenderID,
		Body:           r.Body.String,
		Flagged:        r.Flagged,
		CreatedAt:      r.CreatedAt.Time,
	}
}

type messageRepository struct {
	db *sqlx.DB
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *sqlx.DB) *messageRepository {
	return &messageRepository{db: db}
}

func (repo messageRepository) CreateConversation(ctx context.Context, conv message.Conversation) (message.Conversation, error) {
	conv.ID = uuid.New().String()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return message.Conversation{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversation (id, subject, created_by, created_at) VALUES ($1, $2, $3, $4)`,
		conv.ID, conv.Subject, conv.CreatedBy, conv.CreatedAt.UTC())
	if err != nil {
		return message.Conversation{}, errors.Wrap(err, "inserting conversation")
	}
	for _, userID := range conv.ParticipantIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO participant (conversation_id, user_id) VALUES ($1, $2)`,
			conv.ID, userID)
		if err != nil {
			return message.Conversation{}, errors.Wrap(err, "inserting participant")
		}
	}

	if err = tx.Commit(); err != nil {
		return message.Conversation{}, errors.Wrap(err, "committing conversation")
	}
	return conv, nil
}

func (repo messageRepository) GetConversation(ctx context.Context, id string) (message.Conversation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return message.Conversation{}, message.ErrNotFound
	}

	var row conversationRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM conversation WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return message.Conversation{}, message.ErrNotFound
		}
		return message.Conversation{}, errors.Wrap(err, "finding conversation")
	}

	conv := row.toConversation()
	err := repo.db.SelectContext(ctx, &conv.ParticipantIDs,
		`SELECT user_id FROM participant WHERE conversation_id = $1`, id)
	if err != nil {
		return message.Conversation{}, errors.Wrap(err, "querying participants")
	}
	return conv, nil
}

func (repo messageRepository) QueryConversations(ctx context.Context, participantID string) ([]message.Conversation, error) {
	var rows []conversationRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT c.* FROM conversation c
		JOIN participant p ON p.conversation_id = c.id
		WHERE p.user_id = $1
		ORDER BY c.created_at DESC`, participantID)
	if err != nil {
		return nil, errors.Wrap(err, "querying conversations")
	}

	convs := make([]message.Conversation, 0, len(rows))
	for _, r := range rows {
		conv := r.toConversation()
		err = repo.db.SelectContext(ctx, &conv.ParticipantIDs,
			`SELECT user_id FROM participant WHERE conversation_id = $1`, conv.ID)
		if err != nil {
			return nil, errors.Wrap(err, "querying participants")
		}
		convs = append(convs, conv)
	}
	return convs, nil
}

func (repo messageRepository) CreateMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	msg.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO message (id, conversation_id, sender_id, body, flagged, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Body, msg.Flagged, msg.CreatedAt.UTC())
	if err != nil {
		return message.Message{}, errors.Wrap(err, "inserting message")
	}
	return msg, nil
}

func (repo messageRepository) QueryMessages(ctx context.Context, conversationID string, ordering ...core.DBOrdering) ([]message.Message, error) {
	query := `SELECT * FROM message WHERE conversation_id = $1`
	if len(ordering) > 0 {
		query += orderingClause(ordering)
	} else {
		query += " ORDER BY created_at"
	}

	var rows []messageRow
	if err := repo.db.SelectContext(ctx, &rows, query, conversationID); err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}
	msgs := make([]message.Message, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, r.toMessage())
	}
	return msgs, nil
}
