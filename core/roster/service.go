package roster

import (
	"context"

	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
)

type (
	// Repository stores class rosters and the daily group assignments, keyed by owner (staff user id).
	Repository interface {
		ClassRosters(ctx context.Context, schoolID string) (ClassRoster, error)
		AddStudents(ctx context.Context, schoolID, className string, names ...string) error
		DayAssignments(ctx context.Context, schoolID, date string) (map[string][]StudentAssignment, error)
		// ReplaceGroupAssignments atomically replaces the assignments of the owners in byOwner for schoolID on date.
		// Owners missing from byOwner keep their assignments; an empty list clears the owner's group.
		ReplaceGroupAssignments(ctx context.Context, schoolID, date string, byOwner map[string][]StudentAssignment) error
	}

	Colleague struct {
		ID    string
		Email string
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// LoadDay builds the Store of ownerID for date out of the school rosters and the persisted assignments.
func (svc *Service) LoadDay(ctx context.Context, schoolID, date, ownerID string, colleagues []Colleague) (*Store, error) {
	if !core.IsISODate(date) {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "date", Error: "date must be formatted as YYYY-MM-DD"})
	}

	classes, err := svc.repo.ClassRosters(ctx, schoolID)
	if err != nil {
		return nil, core.NewRemoteOperationError("could not load class rosters", err)
	}
	byOwner, err := svc.repo.DayAssignments(ctx, schoolID, date)
	if err != nil {
		return nil, core.NewRemoteOperationError("could not load group assignments", err)
	}

	groups := NewGroupTable(ownerID)
	for _, c := range colleagues {
		groups.AddColleague(c.ID, c.Email)
	}
	store := NewStore(classes, groups)

	for owner, list := range byOwner {
		key, ok := groups.KeyFor(owner)
		if !ok {
			// assignments of a former colleague stay visible so they are not lost on save
			key = groups.AddColleague(owner, "")
		}
		for _, sa := range list {
			store.place(key, sa)
		}
	}
	return store, nil
}

// SaveDay persists every group list of store for date.
func (svc *Service) SaveDay(ctx context.Context, schoolID, date string, store *Store) error {
	groups := store.groups.Groups()
	keys := make([]GroupKey, 0, len(groups))
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	return svc.save(ctx, schoolID, date, store, keys)
}

// SaveGroup persists the list of the group key only, leaving the other groups of date untouched.
func (svc *Service) SaveGroup(ctx context.Context, schoolID, date string, store *Store, key GroupKey) error {
	if _, ok := store.groups.Lookup(key); !ok {
		return ErrUnknownGroup
	}
	return svc.save(ctx, schoolID, date, store, []GroupKey{key})
}

func (svc *Service) save(ctx context.Context, schoolID, date string, store *Store, keys []GroupKey) error {
	byOwner := make(map[string][]StudentAssignment, len(keys))
	for _, key := range keys {
		g, _ := store.groups.Lookup(key)
		byOwner[g.OwnerID] = store.Assignments(key)
	}
	if err := svc.repo.ReplaceGroupAssignments(ctx, schoolID, date, byOwner); err != nil {
		return core.NewRemoteOperationError("could not save group assignments", err)
	}
	return nil
}

func (svc *Service) ClassRosters(ctx context.Context, schoolID string) (ClassRoster, error) {
	classes, err := svc.repo.ClassRosters(ctx, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "loading class rosters")
	}
	return classes, nil
}

// AddStudents appends names to className's roster, skipping blank names.
func (svc *Service) AddStudents(ctx context.Context, schoolID, className string, names ...string) error {
	className = core.CleanString(className)
	if className == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "class", Error: "this field is required"})
	}
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		if n = core.CleanString(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return errors.Wrap(svc.repo.AddStudents(ctx, schoolID, className, cleaned...), "adding students")
}
