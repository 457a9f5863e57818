package child

import (
	"testing"
	"time"
)

func TestChild_AgeMonths(t *testing.T) {
	at := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		birth time.Time
		want  int
	}{
		{"newborn", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), 0},
		{"six months", time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), 6},
		{"day before month turn", time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC), 5},
		{"two years", time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC), 24},
		{"year boundary", time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC), 7},
		{"not born yet", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), 0},
		{"zero birth date", time.Time{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Child{BirthDate: tt.birth}
			if got := c.AgeMonths(at); got != tt.want {
				t.Errorf("AgeMonths() = %d; want %d", got, tt.want)
			}
		})
	}
}
