package calendar

import "time"

type Day struct {
	Date       string `json:"date"`
	Weekday    string `json:"weekday"`
	DayOfMonth int    `json:"day_of_month"`
	Month      string `json:"month"`
	IsSelected bool   `json:"is_selected"`
	IsToday    bool   `json:"is_today"`
}

// Strip is the weekly calendar strip: the displayed window, the selected day and today.
type Strip struct {
	Window   WeekWindow
	Selected time.Time
	Today    time.Time
}

func NewStrip(today time.Time) *Strip {
	today = DateOf(today)
	return &Strip{
		Window:   WeekFromDate(today),
		Selected: today,
		Today:    today,
	}
}

// Select sets the selected day. The window only moves when t falls outside of it.
func (s *Strip) Select(t time.Time) {
	s.Selected = DateOf(t)
	if !s.Window.Contains(s.Selected) {
		s.Window = WeekFromDate(s.Selected)
	}
}

func (s *Strip) NextWeek() { s.Window = s.Window.NextWeek() }

func (s *Strip) PreviousWeek() { s.Window = s.Window.PreviousWeek() }

func (s *Strip) WeekNumber() int { return s.Window.WeekNumber() }

func (s *Strip) Days() []Day {
	days := make([]Day, 0, 7)
	for _, d := range s.Window.Days() {
		days = append(days, Day{
			Date:       FormatDate(d),
			Weekday:    WeekdayName(d),
			DayOfMonth: d.Day(),
			Month:      MonthName(d),
			IsSelected: d.Equal(s.Selected),
			IsToday:    d.Equal(s.Today),
		})
	}
	return days
}
