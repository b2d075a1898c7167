package bus

import (
	"time"

	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
)

type Status string

const (
	StatusPickedUp   Status = "picked_up"
	StatusArrived    Status = "arrived"
	StatusDeparted   Status = "departed"
	StatusDroppedOff Status = "dropped_off"
)

var Statuses = []Status{StatusPickedUp, StatusArrived, StatusDeparted, StatusDroppedOff}

var statusLabels = map[Status]string{
	StatusPickedUp:   "picked up",
	StatusArrived:    "arrived at school",
	StatusDeparted:   "departed from school",
	StatusDroppedOff: "dropped off",
}

func IsValidStatus(s Status) bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the human readable form of s used in notifications.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

var (
	ErrBusNotFound          = errors.Wrap(core.ErrNotFound, "bus")
	ErrStudentNotFound      = errors.Wrap(core.ErrNotFound, "bus student")
	ErrNotificationNotFound = errors.Wrap(core.ErrNotFound, "bus notification")
)

type Bus struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	DriverID string `json:"driver_id"`
	SchoolID string `json:"school_id"`
}

type Student struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ClassName   string `json:"class_name"`
	BusID       int64  `json:"bus_id"`
	ParentEmail string `json:"parent_email"`
}

type Notification struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	BusID     int64     `json:"bus_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotification is posted by a driver for one of the students of their bus.
type NewNotification struct {
	StudentID int64  `json:"student_id" validate:"required"`
	Status    Status `json:"status" validate:"required,busstatus"`
}
