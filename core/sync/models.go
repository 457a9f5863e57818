package sync

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
)

// Replayable models
const (
	ModelObservation = "observation"
	ModelAchievement = "achievement"
	ModelMessage     = "message"
	ModelShift       = "shift"
)

// Actions
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Result statuses
const (
	StatusApplied = "applied"
	StatusFailed  = "failed"
)

// Operation is one entry of a client's offline queue.
type Operation struct {
	ClientID   string          `json:"client_id" validate:"required"`
	Model      string          `json:"model" validate:"required,oneof=observation achievement message shift"`
	Action     string          `json:"action" validate:"required,oneof=create update delete"`
	ObjectID   string          `json:"object_id"` // required for update/delete
	Payload    json.RawMessage `json:"payload"`
	ClientTime time.Time       `json:"client_time"`
}

func (op *Operation) Validate(validate *validator.Validate) error {
	op.Model = core.CleanString(op.Model, true /* lower */)
	op.Action = core.CleanString(op.Action, true /* lower */)
	op.ObjectID = core.CleanString(op.ObjectID)
	return validate.Struct(op)
}

// Result reports the outcome of replaying one Operation.
type Result struct {
	ClientID string `json:"client_id"`
	Status   string `json:"status"`
	ObjectID string `json:"object_id,omitempty"` // server id of created objects
	Error    string `json:"error,omitempty"`
}

// LogEntry is the persisted audit record of a replayed operation.
type LogEntry struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	ClientID   string      `json:"client_id"`
	Model      string      `json:"model"`
	Action     string      `json:"action"`
	Status     string      `json:"status"`
	Error      null.String `json:"error"`
	ClientTime null.Time   `json:"client_time"`
	CreatedAt  time.Time   `json:"created_at"` // UTC
}
