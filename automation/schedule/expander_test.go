package schedule

import (
	"testing"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/timeutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := timeutils.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestExpand_WeekdaysScenario(t *testing.T) {
	p := Params{
		Start:     date(t, "2024-01-01"),
		End:       date(t, "2024-01-10"),
		TimeOfDay: timeutils.Clock{Hour: 9},
		Frequency: Weekdays,
	}

	got, err := Expand(p)
	require.NoError(t, err)

	var days []int
	for _, at := range got {
		assert.Equal(t, 9, at.Hour())
		assert.Equal(t, 0, at.Minute())
		assert.Equal(t, time.UTC, at.Location())
		days = append(days, at.Day())
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 8, 9, 10}, days)
}

func TestExpand_Daily(t *testing.T) {
	p := Params{
		Start:     date(t, "2024-02-27"),
		End:       date(t, "2024-03-02"),
		TimeOfDay: timeutils.Clock{Hour: 18, Minute: 30},
		Frequency: Daily,
	}
	got, err := Expand(p)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, time.Date(2024, 2, 29, 18, 30, 0, 0, time.UTC), got[2])
}

func TestExpand_CustomDays(t *testing.T) {
	p := Params{
		Start:     date(t, "2024-01-01"),
		End:       date(t, "2024-01-31"),
		TimeOfDay: timeutils.Clock{Hour: 7},
		Frequency: CustomDays,
		Days:      []time.Weekday{time.Monday, time.Thursday},
	}
	got, err := Expand(p)
	require.NoError(t, err)
	require.Len(t, got, 9)
	for _, at := range got {
		assert.Contains(t, []time.Weekday{time.Monday, time.Thursday}, at.Weekday())
	}
}

func TestExpand_SingleDayRange(t *testing.T) {
	p := Params{
		Start:     date(t, "2024-01-06"),
		End:       date(t, "2024-01-06"),
		TimeOfDay: timeutils.Clock{Hour: 9},
		Frequency: Weekdays,
	}
	got, err := Expand(p)
	require.NoError(t, err)
	assert.Empty(t, got, "saturday is not a weekday")
}

func TestExpand_Properties(t *testing.T) {
	p := Params{
		Start:     date(t, "2024-03-01"),
		End:       date(t, "2024-05-31"),
		TimeOfDay: timeutils.Clock{Hour: 10, Minute: 15},
		Frequency: CustomDays,
		Days:      []time.Weekday{time.Tuesday, time.Saturday, time.Sunday},
	}

	first, err := Expand(p)
	require.NoError(t, err)
	second, err := Expand(p)
	require.NoError(t, err)
	assert.Equal(t, first, second, "expand is deterministic")

	lo := p.Start
	hi := p.End.AddDate(0, 0, 1)
	for i, at := range first {
		assert.True(t, p.Includes(at.Weekday()))
		assert.False(t, at.Before(lo))
		assert.True(t, at.Before(hi))
		assert.Equal(t, 10, at.Hour())
		assert.Equal(t, 15, at.Minute())
		if i > 0 {
			assert.True(t, at.After(first[i-1]))
		}
	}
}

func TestExpand_TimezoneKeepsWallClockAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	p := Params{
		Start:     date(t, "2024-03-08"),
		End:       date(t, "2024-03-12"),
		TimeOfDay: timeutils.Clock{Hour: 9},
		Frequency: Daily,
		Location:  loc,
	}
	occ, err := Occurrences(p, Window{})
	require.NoError(t, err)
	require.Len(t, occ, 5)

	for _, o := range occ {
		assert.Equal(t, 9, o.At.In(loc).Hour(), o.Day)
	}
	// EST before the switch, EDT after
	assert.Equal(t, 14, occ[0].At.Hour())
	assert.Equal(t, 13, occ[4].At.Hour())
	assert.Equal(t, "2024-03-08", occ[0].Day)
}

func TestExpandWindow(t *testing.T) {
	p := Params{
		Start:     date(t, "2024-01-01"),
		End:       date(t, "2024-06-30"),
		TimeOfDay: timeutils.Clock{Hour: 9},
		Frequency: Daily,
	}

	t.Run("through caps the calendar", func(t *testing.T) {
		got, err := ExpandWindow(p, Window{Through: date(t, "2024-01-05")})
		require.NoError(t, err)
		assert.Len(t, got, 5)
	})

	t.Run("limit caps the count", func(t *testing.T) {
		got, err := ExpandWindow(p, Window{Limit: 3})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("not before skips past instants", func(t *testing.T) {
		now := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)
		got, err := ExpandWindow(p, Window{NotBefore: now, Through: date(t, "2024-01-06")})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, 4, got[0].Day())
	})

	t.Run("window is a subset of the full expansion", func(t *testing.T) {
		full, err := Expand(p)
		require.NoError(t, err)
		part, err := ExpandWindow(p, Window{NotBefore: date(t, "2024-02-10"), Limit: 10})
		require.NoError(t, err)
		for _, at := range part {
			assert.Contains(t, full, at)
		}
	})
}

func TestExpand_InvalidParams(t *testing.T) {
	_, err := Expand(Params{
		Start:     date(t, "2024-01-10"),
		End:       date(t, "2024-01-01"),
		Frequency: Daily,
	})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Expand(Params{
		Start:     date(t, "2024-01-01"),
		End:       date(t, "2024-01-10"),
		Frequency: CustomDays,
	})
	assert.ErrorIs(t, err, ErrNoDays)

	_, err = Expand(Params{
		Start:     date(t, "2024-01-01"),
		End:       date(t, "2024-01-10"),
		Frequency: "hourly",
	})
	assert.ErrorIs(t, err, ErrUnknownFrequency)
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency(" Weekdays ")
	require.NoError(t, err)
	assert.Equal(t, Weekdays, f)

	_, err = ParseFrequency("monthly")
	assert.ErrorIs(t, err, ErrUnknownFrequency)
}
