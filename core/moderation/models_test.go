package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_Match(t *testing.T) {
	matcher := NewMatcher([]string{"Bruise", "emergency", "  FELL  ", ""})

	tests := []struct {
		name        string
		text        string
		wantKeyword string
		wantMatch   bool
	}{
		{name: "empty text", text: "", wantMatch: false},
		{name: "no match", text: "Happy afternoon at the park", wantMatch: false},
		{name: "exact keyword", text: "emergency", wantKeyword: "emergency", wantMatch: true},
		{name: "case insensitive", text: "Small BRUISE on the left knee", wantKeyword: "bruise", wantMatch: true},
		{name: "substring", text: "she fell off the swing", wantKeyword: "fell", wantMatch: true},
		{name: "trimmed keyword", text: "He fell asleep quickly", wantKeyword: "fell", wantMatch: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kw, ok := matcher.Match(tt.text)
			assert.Equal(t, tt.wantMatch, ok)
			assert.Equal(t, tt.wantKeyword, kw)
		})
	}
}

func TestMatcher_Match_nil(t *testing.T) {
	var matcher *Matcher
	kw, ok := matcher.Match("anything")
	assert.False(t, ok)
	assert.Empty(t, kw)
}
