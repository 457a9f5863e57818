package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

func TestSumHours(t *testing.T) {
	now := time.Date(2021, 6, 1, 8, 0, 0, 0, time.UTC)
	mkShift := func(nannyID string, start time.Time, dur time.Duration) Shift {
		return Shift{
			NannyID:  nannyID,
			ClockIn:  start,
			ClockOut: null.TimeFrom(start.Add(dur)),
		}
	}

	shifts := []Shift{
		mkShift("nan1", now, 4*time.Hour),
		mkShift("nan1", now.Add(24*time.Hour), 3*time.Hour+30*time.Minute),
		mkShift("nan2", now, 45*time.Minute),
		{NannyID: "nan1", ClockIn: now.Add(48 * time.Hour)}, // still open, ignored
	}

	totals := SumHours(shifts)
	assert.Len(t, totals, 2)
	assert.Equal(t, Total{NannyID: "nan1", Shifts: 2, Hours: 7.5}, totals[0])
	assert.Equal(t, Total{NannyID: "nan2", Shifts: 1, Hours: 0.75}, totals[1])
}

func TestShift_Hours(t *testing.T) {
	start := time.Date(2021, 6, 1, 9, 0, 0, 0, time.UTC)
	open := Shift{ClockIn: start}
	assert.True(t, open.Open())
	assert.Equal(t, float64(0), open.Hours())

	closed := Shift{ClockIn: start, ClockOut: null.TimeFrom(start.Add(90 * time.Minute))}
	assert.False(t, closed.Open())
	assert.Equal(t, 1.5, closed.Hours())
}
