package observation

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
)

// Observation categories
const (
	CategoryNote     = "note"
	CategoryMeal     = "meal"
	CategoryNap      = "nap"
	CategoryIncident = "incident"
	CategoryPhoto    = "photo"
)

type Observation struct {
	ID        string      `json:"id"`
	ChildID   string      `json:"child_id"`
	AuthorID  string      `json:"author_id"`
	Category  string      `json:"category"`
	Body      string      `json:"body"`
	MediaURL  null.String `json:"media_url"`
	Flagged   bool        `json:"flagged"`
	CreatedAt time.Time   `json:"created_at"` // UTC
	UpdatedAt null.Time   `json:"updated_at"`
}

type NewObservation struct {
	ChildID  string `json:"child_id" validate:"required"`
	Category string `json:"category" validate:"required,oneof=note meal nap incident photo"`
	Body     string `json:"body" validate:"required"`
	MediaURL string `json:"media_url" validate:"omitempty,url"`
}

func (no *NewObservation) Validate(validate *validator.Validate) error {
	no.Category = core.CleanString(no.Category, true /* lower */)
	no.Body = core.CleanString(no.Body)
	no.MediaURL = core.CleanString(no.MediaURL)
	return validate.Struct(no)
}

type UpdateObservation struct {
	Category string `json:"category" validate:"omitempty,oneof=note meal nap incident photo"`
	Body     string `json:"body" validate:"omitempty"`
	MediaURL string `json:"media_url" validate:"omitempty,url"`
}

func (uo *UpdateObservation) Validate(validate *validator.Validate) error {
	uo.Category = core.CleanString(uo.Category, true /* lower */)
	uo.Body = core.CleanString(uo.Body)
	uo.MediaURL = core.CleanString(uo.MediaURL)
	return validate.Struct(uo)
}

type QueryFilter struct {
	ChildID  string    `query:"child_id"`
	Category string    `query:"category"`
	From     time.Time `query:"from"`
	To       time.Time `query:"to"`
}

func (f QueryFilter) IsEmpty() bool {
	return f == QueryFilter{}
}

func (f *QueryFilter) Clean() {
	f.ChildID = core.CleanString(f.ChildID)
	f.Category = core.CleanString(f.Category, true /* lower */)
}
