package inmemdb

import (
	"context"

	"github.com/planitkids/fritids/core/roster"
)

type rosterRepository struct {
	db *DB
}

var _ roster.Repository = (*rosterRepository)(nil)

func NewRosterRepository(db *DB) *rosterRepository {
	return &rosterRepository{db: db}
}

func (repo *rosterRepository) ClassRosters(_ context.Context, schoolID string) (roster.ClassRoster, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res := make(roster.ClassRoster)
	for class, names := range repo.db.rosters[schoolID] {
		res[class] = append([]string{}, names...)
	}
	return res, nil
}

func (repo *rosterRepository) AddStudents(_ context.Context, schoolID, className string, names ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	classes, ok := repo.db.rosters[schoolID]
	if !ok {
		classes = make(roster.ClassRoster)
		repo.db.rosters[schoolID] = classes
	}
	for _, n := range names {
		if !contains(classes[className], n) {
			classes[className] = append(classes[className], n)
		}
	}
	return nil
}

func (repo *rosterRepository) DayAssignments(_ context.Context, schoolID, date string) (map[string][]roster.StudentAssignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res := make(map[string][]roster.StudentAssignment)
	for owner, list := range repo.db.assignments[schoolID+"/"+date] {
		res[owner] = append([]roster.StudentAssignment{}, list...)
	}
	return res, nil
}

func (repo *rosterRepository) ReplaceGroupAssignments(_ context.Context, schoolID, date string, byOwner map[string][]roster.StudentAssignment) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	dayKey := schoolID + "/" + date
	day, ok := repo.db.assignments[dayKey]
	if !ok {
		day = make(map[string][]roster.StudentAssignment, len(byOwner))
		repo.db.assignments[dayKey] = day
	}
	for owner, list := range byOwner {
		if len(list) == 0 {
			delete(day, owner)
			continue
		}
		day[owner] = append([]roster.StudentAssignment{}, list...)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
