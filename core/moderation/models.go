package moderation

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
)

// Flaggable content types
const (
	ContentObservation = "observation"
	ContentMessage     = "message"
)

// Flag reasons
const (
	ReasonKeyword = "keyword"
	ReasonManual  = "manual"
)

// Flag statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRemoved  = "removed"
)

// RedactedBody replaces the body of content moderated away.
const RedactedBody = "[removed by moderator]"

type Flag struct {
	ID          string      `json:"id"`
	ContentType string      `json:"content_type"`
	ContentID   string      `json:"content_id"`
	Reason      string      `json:"reason"`
	Keyword     null.String `json:"keyword"`
	FlaggedBy   null.String `json:"flagged_by"`
	Status      string      `json:"status"`
	ResolvedBy  null.String `json:"resolved_by"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	ResolvedAt  null.Time   `json:"resolved_at"`
}

type NewFlag struct {
	ContentType string `json:"content_type" validate:"required,oneof=observation message"`
	ContentID   string `json:"content_id" validate:"required"`
}

func (nf *NewFlag) Validate(validate *validator.Validate) error {
	nf.ContentType = core.CleanString(nf.ContentType, true /* lower */)
	return validate.Struct(nf)
}

// Resolve actions
const (
	ActionApprove = "approve"
	ActionRemove  = "remove"
)

type ResolveFlag struct {
	Action string `json:"action" validate:"required,oneof=approve remove"`
}

func (rf *ResolveFlag) Validate(validate *validator.Validate) error {
	rf.Action = core.CleanString(rf.Action, true /* lower */)
	return validate.Struct(rf)
}

// Matcher scans user-generated text for configured keywords;
// matching is case-insensitive substring.
type Matcher struct {
	keywords []string
}

func NewMatcher(keywords []string) *Matcher {
	kws := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = core.CleanString(kw, true /* lower */); kw != "" {
			kws = append(kws, kw)
		}
	}
	return &Matcher{keywords: kws}
}

// Match returns the first configured keyword found in text.
func (m *Matcher) Match(text string) (string, bool) {
	if m == nil {
		return "", false
	}
	text = strings.ToLower(text)
	for _, kw := range m.keywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}
