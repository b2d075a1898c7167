package activity

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
)

type Type string

const (
	TypePyssel     Type = "Pyssel"
	TypeUtomhus    Type = "Utomhus"
	TypeFilm       Type = "Film"
	TypeTemaArbete Type = "Tema Arbete"
	TypeBakning    Type = "Bakning"

	DefaultType = TypePyssel
)

var Types = []Type{TypePyssel, TypeUtomhus, TypeFilm, TypeTemaArbete, TypeBakning}

func IsValidType(t Type) bool {
	for _, typ := range Types {
		if typ == t {
			return true
		}
	}
	return false
}

// Field names an editable Activity field.
type Field string

const (
	FieldType        Field = "type"
	FieldFromTime    Field = "from_time"
	FieldToTime      Field = "to_time"
	FieldLocation    Field = "location"
	FieldDescription Field = "description"
)

var (
	ErrNotFound = errors.Wrap(core.ErrNotFound, "activity")
	// ErrUnknownField is returned by Planner.UpdateField on a field that cannot be edited.
	ErrUnknownField = errors.New("unknown activity field")
)

type Photo struct {
	ID  string `json:"id"`
	URI string `json:"uri"`
}

type StaffRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Activity struct {
	LocalID       string     `json:"local_id"`
	RemoteID      *int64     `json:"id"`
	SchoolID      string     `json:"school_id" validate:"required"`
	Date          string     `json:"date" validate:"required,isodate"`
	Type          Type       `json:"type" validate:"required,activitytype"`
	FromTime      string     `json:"from_time" validate:"required,hhmm"`
	ToTime        string     `json:"to_time" validate:"required,hhmm"`
	Location      string     `json:"location" validate:"required,notblank"`
	Description   string     `json:"description"`
	Photos        []Photo    `json:"photos"`
	AssignedStaff []StaffRef `json:"assigned_staff"`
	Saved         bool       `json:"saved"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (a Activity) clone() Activity {
	a.Photos = append([]Photo{}, a.Photos...)
	a.AssignedStaff = append([]StaffRef{}, a.AssignedStaff...)
	if a.RemoteID != nil {
		id := *a.RemoteID
		a.RemoteID = &id
	}
	return a
}

// missingFields returns the required fields left empty before a save.
func (a Activity) missingFields() []core.FieldError {
	var flds []core.FieldError
	if strings.TrimSpace(a.FromTime) == "" {
		flds = append(flds, core.FieldError{Field: string(FieldFromTime), Error: "this field is required"})
	}
	if strings.TrimSpace(a.ToTime) == "" {
		flds = append(flds, core.FieldError{Field: string(FieldToTime), Error: "this field is required"})
	}
	if strings.TrimSpace(a.Location) == "" {
		flds = append(flds, core.FieldError{Field: string(FieldLocation), Error: "this field is required"})
	}
	return flds
}

// HandleTimeChange formats a time input while it is typed.
// Non-digits are stripped; up to 2 digits pass through; 3-4 digits render as HH:MM.
// More than 4 digits is rejected and current is returned unchanged.
func HandleTimeChange(current, text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) > 4:
		return current
	case len(digits) <= 2:
		return digits
	default:
		return digits[:2] + ":" + digits[2:]
	}
}
