package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestWeekFromDate(t *testing.T) {
	tests := []struct {
		name string
		date string
		want [7]string
	}{
		{
			name: "monday",
			date: "2024-09-02",
			want: [7]string{"2024-09-02", "2024-09-03", "2024-09-04", "2024-09-05", "2024-09-06", "2024-09-07", "2024-09-08"},
		},
		{
			name: "wednesday",
			date: "2024-09-04",
			want: [7]string{"2024-09-02", "2024-09-03", "2024-09-04", "2024-09-05", "2024-09-06", "2024-09-07", "2024-09-08"},
		},
		{
			name: "sunday is day 7",
			date: "2024-09-08",
			want: [7]string{"2024-09-02", "2024-09-03", "2024-09-04", "2024-09-05", "2024-09-06", "2024-09-07", "2024-09-08"},
		},
		{
			name: "across months",
			date: "2024-10-31",
			want: [7]string{"2024-10-28", "2024-10-29", "2024-10-30", "2024-10-31", "2024-11-01", "2024-11-02", "2024-11-03"},
		},
		{
			name: "across years",
			date: "2025-01-01",
			want: [7]string{"2024-12-30", "2024-12-31", "2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04", "2025-01-05"},
		},
		{
			name: "leap day",
			date: "2024-02-29",
			want: [7]string{"2024-02-26", "2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02", "2024-03-03"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekFromDate(date(t, tt.date)).Dates())
		})
	}
}

func TestWeekFromDate_ConsecutiveFromMonday(t *testing.T) {
	start := date(t, "2023-12-20")
	for i := 0; i < 400; i++ {
		d := start.AddDate(0, 0, i)
		days := WeekFromDate(d).Days()
		assert.Equal(t, time.Monday, days[0].Weekday(), d)
		for j := 1; j < len(days); j++ {
			assert.Equal(t, days[j-1].AddDate(0, 0, 1), days[j], d)
		}
		assert.True(t, WeekFromDate(d).Contains(d))
	}
}

func TestWeekFromDate_IgnoresClockAndZone(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)
	late := time.Date(2024, 9, 8, 23, 59, 0, 0, loc)
	assert.Equal(t, "2024-09-02", FormatDate(WeekFromDate(late).Start()))
}

func TestWeekWindow_Navigation(t *testing.T) {
	w := WeekFromDate(date(t, "2024-12-25"))
	assert.Equal(t, "2024-12-30", FormatDate(w.NextWeek().Start()))
	assert.Equal(t, "2024-12-16", FormatDate(w.PreviousWeek().Start()))
	assert.Equal(t, w, w.NextWeek().PreviousWeek())
	assert.Equal(t, w.NextWeek().NextWeek(), w.Shift(2))
	assert.Equal(t, w.PreviousWeek(), w.Shift(-1))
	assert.False(t, w.Contains(date(t, "2024-12-30")))
	assert.True(t, w.Contains(date(t, "2024-12-29")))
}

func TestWeekNumber(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{date: "2024-01-01", want: 1},
		{date: "2024-09-04", want: 36},
		{date: "2024-12-30", want: 1},
		{date: "2021-01-03", want: 53},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekNumber(date(t, tt.date)))
		})
	}
}

func TestNames(t *testing.T) {
	d := date(t, "2024-09-08")
	assert.Equal(t, "Söndag", WeekdayName(d))
	assert.Equal(t, "september", MonthName(d))
	assert.Equal(t, "Måndag", WeekdayName(d.AddDate(0, 0, 1)))
	assert.Equal(t, "januari", MonthName(date(t, "2025-01-01")))
}

func TestStrip(t *testing.T) {
	today := date(t, "2024-09-04")
	s := NewStrip(today.Add(15 * time.Hour))
	assert.Equal(t, today, s.Selected)
	assert.Equal(t, 36, s.WeekNumber())

	days := s.Days()
	require.Len(t, days, 7)
	assert.Equal(t, Day{Date: "2024-09-04", Weekday: "Onsdag", DayOfMonth: 4, Month: "september", IsSelected: true, IsToday: true}, days[2])
	assert.False(t, days[0].IsSelected)

	// selecting inside the window does not move it
	s.Select(date(t, "2024-09-06"))
	assert.Equal(t, "2024-09-02", FormatDate(s.Window.Start()))
	assert.True(t, s.Days()[4].IsSelected)
	assert.True(t, s.Days()[2].IsToday)

	// selecting outside moves it
	s.Select(date(t, "2024-09-10"))
	assert.Equal(t, "2024-09-09", FormatDate(s.Window.Start()))
	for _, d := range s.Days() {
		assert.False(t, d.IsToday)
	}

	// navigating keeps the selection
	s.PreviousWeek()
	assert.Equal(t, "2024-09-02", FormatDate(s.Window.Start()))
	assert.Equal(t, "2024-09-10", FormatDate(s.Selected))
	s.NextWeek()
	assert.True(t, s.Days()[1].IsSelected)
}

func TestMarkedDates(t *testing.T) {
	occs := []Occasion{{Date: "2024-09-10"}, {Date: "2024-09-02"}, {Date: "2024-09-10"}}
	assert.Equal(t, []string{"2024-09-02", "2024-09-10"}, MarkedDates(occs))
	assert.Empty(t, MarkedDates(nil))
	assert.True(t, InMonth("2024-09-10", "2024-09"))
	assert.False(t, InMonth("2024-10-01", "2024-09"))
}
