package shift

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
)

type Shift struct {
	ID       string      `json:"id"`
	NannyID  string      `json:"nanny_id"`
	FamilyID string      `json:"family_id"`
	ClockIn  time.Time   `json:"clock_in"` // UTC
	ClockOut null.Time   `json:"clock_out"`
	Note     null.String `json:"note"`
}

// Open reports whether the shift has not been clocked out yet.
func (s Shift) Open() bool {
	return !s.ClockOut.Valid
}

// Hours returns the worked duration in hours; 0 while the shift is open.
func (s Shift) Hours() float64 {
	if s.Open() {
		return 0
	}
	return s.ClockOut.Time.Sub(s.ClockIn).Hours()
}

type ClockIn struct {
	FamilyID string `json:"family_id" validate:"required"`
	Note     string `json:"note"`
}

func (ci *ClockIn) Validate(validate *validator.Validate) error {
	ci.Note = core.CleanString(ci.Note)
	return validate.Struct(ci)
}

type QueryFilter struct {
	NannyID  string    `query:"nanny_id"`
	FamilyID string    `query:"family_id"`
	From     time.Time `query:"from"`
	To       time.Time `query:"to"`
}

func (f QueryFilter) IsEmpty() bool {
	return f == QueryFilter{}
}

func (f *QueryFilter) Clean() {
	f.NannyID = core.CleanString(f.NannyID)
	f.FamilyID = core.CleanString(f.FamilyID)
}

// Total aggregates completed hours for one nanny.
type Total struct {
	NannyID string  `json:"nanny_id"`
	Shifts  int     `json:"shifts"`
	Hours   float64 `json:"hours"`
}
