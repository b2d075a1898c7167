package roster

import (
	"sort"

	"github.com/pkg/errors"
)

var ErrUnknownGroup = errors.New("unknown group")

type (
	StudentAssignment struct {
		StudentName string `json:"student_name"`
		ClassName   string `json:"class_name"`
	}

	// ClassRoster maps a class name to its ordered list of student names.
	ClassRoster map[string][]string

	GroupView struct {
		Group
		Students []StudentAssignment `json:"students"`
	}
)

func (r ClassRoster) clone() ClassRoster {
	res := make(ClassRoster, len(r))
	for class, names := range r {
		res[class] = append([]string(nil), names...)
	}
	return res
}

// Store keeps every group's assignments for one day.
// A student name is listed either in its class roster or in exactly one group, never both.
// Store is not safe for concurrent use.
type Store struct {
	roster   ClassRoster
	groups   *GroupTable
	assigned map[GroupKey][]StudentAssignment
	active   GroupKey
}

func NewStore(roster ClassRoster, groups *GroupTable) *Store {
	if roster == nil {
		roster = make(ClassRoster)
	}
	if groups == nil {
		groups = NewGroupTable("")
	}
	return &Store{
		roster:   roster.clone(),
		groups:   groups,
		assigned: make(map[GroupKey][]StudentAssignment),
		active:   MyGroup,
	}
}

func (s *Store) Active() GroupKey { return s.active }

func (s *Store) GroupTable() *GroupTable { return s.groups }

func (s *Store) SelectGroup(key GroupKey) error {
	if _, ok := s.groups.Lookup(key); !ok {
		return ErrUnknownGroup
	}
	s.active = key
	return nil
}

// Assign moves studentName out of className's roster into the active group.
// It is a no-op (returns false) when the student is already in a group or is not in the roster.
func (s *Store) Assign(className, studentName string) bool {
	if s.IsAssigned(studentName) {
		return false
	}
	return s.place(s.active, StudentAssignment{StudentName: studentName, ClassName: className})
}

// Unassign removes sa from the active group and appends the name back to the end of its class roster.
func (s *Store) Unassign(sa StudentAssignment) bool {
	list := s.assigned[s.active]
	for i, a := range list {
		if a == sa {
			s.assigned[s.active] = append(list[:i:i], list[i+1:]...)
			s.roster[sa.ClassName] = append(s.roster[sa.ClassName], sa.StudentName)
			return true
		}
	}
	return false
}

// Available returns className's roster minus every group's assignments.
func (s *Store) Available(className string) []string {
	taken := make(map[string]struct{})
	for _, list := range s.assigned {
		for _, a := range list {
			taken[a.StudentName] = struct{}{}
		}
	}
	names := s.roster[className]
	res := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := taken[name]; !ok {
			res = append(res, name)
		}
	}
	return res
}

func (s *Store) Assignments(key GroupKey) []StudentAssignment {
	return append([]StudentAssignment{}, s.assigned[key]...)
}

// Groups returns every registered group along with its students.
func (s *Store) Groups() []GroupView {
	groups := s.groups.Groups()
	res := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		res = append(res, GroupView{Group: g, Students: s.Assignments(g.Key)})
	}
	return res
}

func (s *Store) Classes() []string {
	classes := make([]string, 0, len(s.roster))
	for class := range s.roster {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}

func (s *Store) AssignedCount() int {
	var n int
	for _, list := range s.assigned {
		n += len(list)
	}
	return n
}

func (s *Store) RosterCount(className string) int { return len(s.roster[className]) }

// IsAssigned reports whether studentName is in any group.
func (s *Store) IsAssigned(studentName string) bool {
	for _, list := range s.assigned {
		for _, a := range list {
			if a.StudentName == studentName {
				return true
			}
		}
	}
	return false
}

// place splices sa out of its class roster and appends it to the group key.
func (s *Store) place(key GroupKey, sa StudentAssignment) bool {
	names := s.roster[sa.ClassName]
	for i, name := range names {
		if name == sa.StudentName {
			s.roster[sa.ClassName] = append(names[:i:i], names[i+1:]...)
			s.assigned[key] = append(s.assigned[key], sa)
			return true
		}
	}
	return false
}
