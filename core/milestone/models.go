package milestone

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
)

// Milestone categories
const (
	CategoryMotor     = "motor"
	CategoryLanguage  = "language"
	CategorySocial    = "social"
	CategoryCognitive = "cognitive"
)

// Milestone is a catalog entry describing a developmental step
// expected within an age range.
type Milestone struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	MinMonths   int    `json:"min_months"`
	MaxMonths   int    `json:"max_months"`
}

type NewMilestone struct {
	Category    string `json:"category" validate:"required,oneof=motor language social cognitive"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	MinMonths   int    `json:"min_months" validate:"min=0"`
	MaxMonths   int    `json:"max_months" validate:"gtefield=MinMonths"`
}

func (nm *NewMilestone) Validate(validate *validator.Validate) error {
	nm.Category = core.CleanString(nm.Category, true /* lower */)
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
	return validate.Struct(nm)
}

// Achievement marks a milestone as reached by a child.
type Achievement struct {
	ID          string      `json:"id"`
	ChildID     string      `json:"child_id"`
	MilestoneID string      `json:"milestone_id"`
	RecordedBy  string      `json:"recorded_by"`
	Note        null.String `json:"note"`
	AchievedAt  time.Time   `json:"achieved_at"` // UTC
	CreatedAt   time.Time   `json:"created_at"`  // UTC
}

type NewAchievement struct {
	MilestoneID string    `json:"milestone_id" validate:"required"`
	Note        string    `json:"note"`
	AchievedAt  time.Time `json:"achieved_at"`
}

func (na *NewAchievement) Validate(validate *validator.Validate) error {
	na.Note = core.CleanString(na.Note)
	if na.AchievedAt.IsZero() {
		na.AchievedAt = time.Now().UTC()
	}
	return validate.Struct(na)
}

type QueryFilter struct {
	Category  string `query:"category"`
	AgeMonths int    `query:"age_months"` // match entries whose range covers this age
}

func (f QueryFilter) IsEmpty() bool {
	return f == QueryFilter{}
}

func (f *QueryFilter) Clean() {
	f.Category = core.CleanString(f.Category, true /* lower */)
}

// Progress summarizes a child's standing against the catalog
// for their current age.
type Progress struct {
	ChildID   string `json:"child_id"`
	AgeMonths int    `json:"age_months"`
	Expected  int    `json:"expected"`
	Achieved  int    `json:"achieved"`
}
