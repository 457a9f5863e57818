package child

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
)

type Family struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Membership links a parent User to a Family.
type Membership struct {
	FamilyID string `json:"family_id"`
	UserID   string `json:"user_id"`
	Relation string `json:"relation"` // mother, father, guardian...
}

// Assignment links a nanny User to a Family they care for.
type Assignment struct {
	FamilyID  string    `json:"family_id"`
	NannyID   string    `json:"nanny_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Child struct {
	ID        string      `json:"id"`
	FamilyID  string      `json:"family_id"`
	Name      string      `json:"name"`
	BirthDate time.Time   `json:"birth_date"`
	Allergies null.String `json:"allergies"`
	Notes     null.String `json:"notes"`
	CreatedAt time.Time   `json:"created_at"` // UTC
	UpdatedAt time.Time   `json:"updated_at"` // UTC
}

// AgeMonths returns the child's age in full months at t.
func (c Child) AgeMonths(t time.Time) int {
	if c.BirthDate.IsZero() || t.Before(c.BirthDate) {
		return 0
	}
	years := t.Year() - c.BirthDate.Year()
	months := int(t.Month()) - int(c.BirthDate.Month())
	if t.Day() < c.BirthDate.Day() {
		months--
	}
	return years*12 + months
}

type NewFamily struct {
	Name     string `json:"name" validate:"required"`
	Relation string `json:"relation"`
}

func (nf *NewFamily) Validate(validate *validator.Validate) error {
	nf.Name = core.CleanString(nf.Name)
	nf.Relation = core.CleanString(nf.Relation, true /* lower */)
	return validate.Struct(nf)
}

type NewMember struct {
	UserID   string `json:"user_id" validate:"required"`
	Relation string `json:"relation"`
}

func (nm *NewMember) Validate(validate *validator.Validate) error {
	nm.Relation = core.CleanString(nm.Relation, true /* lower */)
	return validate.Struct(nm)
}

type NewChild struct {
	FamilyID  string    `json:"family_id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	BirthDate time.Time `json:"birth_date" validate:"required"`
	Allergies string    `json:"allergies"`
	Notes     string    `json:"notes"`
}

func (nc *NewChild) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Allergies = core.CleanString(nc.Allergies)
	nc.Notes = core.CleanString(nc.Notes)
	return validate.Struct(nc)
}

// UpdateChild defines what may be modified on an existing Child.
type UpdateChild struct {
	Name      string    `json:"name"`
	BirthDate time.Time `json:"birth_date"`
	Allergies *string   `json:"allergies"`
	Notes     *string   `json:"notes"`
}

func (uc *UpdateChild) Validate(validate *validator.Validate, orig Child) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if uc.BirthDate.IsZero() {
		uc.BirthDate = orig.BirthDate
	}
	return validate.Struct(uc)
}

// GetFilter selects a single Child.
type GetFilter struct {
	ID       string
	FamilyID string
}
