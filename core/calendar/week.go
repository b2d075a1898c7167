package calendar

import (
	"time"

	"github.com/planitkids/fritids/core"
)

// DateOf drops the clock and the location of t, keeping its wall-clock date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(core.DateLayout, s)
}

func FormatDate(t time.Time) string {
	return t.Format(core.DateLayout)
}

// WeekWindow is 7 consecutive dates, Monday first.
type WeekWindow struct {
	start time.Time
}

// WeekFromDate returns the week containing t. Sunday belongs to the week of the previous Monday.
func WeekFromDate(t time.Time) WeekWindow {
	d := DateOf(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday: 0 ... Sunday: 6
	return WeekWindow{start: d.AddDate(0, 0, -offset)}
}

func (w WeekWindow) Start() time.Time { return w.start }

func (w WeekWindow) End() time.Time { return w.start.AddDate(0, 0, 6) }

func (w WeekWindow) Days() [7]time.Time {
	var days [7]time.Time
	for i := range days {
		days[i] = w.start.AddDate(0, 0, i)
	}
	return days
}

// Dates returns the window as YYYY-MM-DD strings.
func (w WeekWindow) Dates() [7]string {
	var dates [7]string
	for i, d := range w.Days() {
		dates[i] = FormatDate(d)
	}
	return dates
}

func (w WeekWindow) NextWeek() WeekWindow { return WeekWindow{start: w.start.AddDate(0, 0, 7)} }

func (w WeekWindow) PreviousWeek() WeekWindow { return WeekWindow{start: w.start.AddDate(0, 0, -7)} }

// Shift moves the window by n weeks.
func (w WeekWindow) Shift(n int) WeekWindow { return WeekWindow{start: w.start.AddDate(0, 0, 7*n)} }

func (w WeekWindow) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(w.start) && !d.After(w.End())
}

func (w WeekWindow) WeekNumber() int { return WeekNumber(w.start) }

// WeekNumber returns the ISO 8601 week number of t.
func WeekNumber(t time.Time) int {
	_, week := DateOf(t).ISOWeek()
	return week
}

var (
	weekdayNames = [7]string{"Söndag", "Måndag", "Tisdag", "Onsdag", "Torsdag", "Fredag", "Lördag"}
	monthNames   = [12]string{
		"januari", "februari", "mars", "april", "maj", "juni",
		"juli", "augusti", "september", "oktober", "november", "december",
	}
)

func WeekdayName(t time.Time) string { return weekdayNames[t.Weekday()] }

func MonthName(t time.Time) string { return monthNames[t.Month()-1] }
