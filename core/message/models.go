package message

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
)

type Conversation struct {
	ID        string      `json:"id"`
	Subject   null.String `json:"subject"`
	CreatedBy string      `json:"created_by"`
	CreatedAt time.Time   `json:"created_at"` // UTC

	ParticipantIDs []string `json:"participant_ids,omitempty"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"body"`
	Flagged        bool      `json:"flagged"`
	CreatedAt      time.Time `json:"created_at"` // UTC
}

type NewConversation struct {
	Subject        string   `json:"subject"`
	ParticipantIDs []string `json:"participant_ids" validate:"required,min=1,dive,required"`
}

func (nc *NewConversation) Validate(validate *validator.Validate) error {
	nc.Subject = core.CleanString(nc.Subject)
	return validate.Struct(nc)
}

type NewMessage struct {
	Body string `json:"body" validate:"required"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.Body = core.CleanString(nm.Body)
	return validate.Struct(nm)
}
