// Package inmemdb holds repositories backed by process memory, used by tests and the "memory" database engine.
package inmemdb

import (
	"sync"

	"github.com/planitkids/fritids/core/activity"
	"github.com/planitkids/fritids/core/bus"
	"github.com/planitkids/fritids/core/calendar"
	"github.com/planitkids/fritids/core/roster"
	"github.com/planitkids/fritids/core/user"
)

type (
	// DB is shared by every repository of this package.
	DB struct {
		mu sync.RWMutex

		users map[string]*user.User

		rosters     map[string]roster.ClassRoster // {schoolID: roster}
		assignments map[string]map[string][]roster.StudentAssignment // {schoolID/date: {ownerID: list}}

		activities map[int64]*activity.Activity
		occasions  map[string]*calendar.Occasion

		buses         map[int64]*bus.Bus
		students      map[int64]*bus.Student
		notifications map[int64]*bus.Notification

		seq int64
	}
)

func NewDB() *DB {
	return &DB{
		users:         make(map[string]*user.User),
		rosters:       make(map[string]roster.ClassRoster),
		assignments:   make(map[string]map[string][]roster.StudentAssignment),
		activities:    make(map[int64]*activity.Activity),
		occasions:     make(map[string]*calendar.Occasion),
		buses:         make(map[int64]*bus.Bus),
		students:      make(map[int64]*bus.Student),
		notifications: make(map[int64]*bus.Notification),
	}
}

// nextID returns the next serial primary key. Must be called with mu held.
func (db *DB) nextID() int64 {
	db.seq++
	return db.seq
}
