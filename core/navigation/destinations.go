package navigation

import "github.com/planitkids/fritids/core/user"

// Destination is a screen the app can navigate to.
type Destination string

const (
	FritidsledareDashboard   Destination = "FritidsledareDashboard"
	FritidspersonalDashboard Destination = "FritidspersonalDashboard"
	WhatsToday               Destination = "WhatsToday"
	MyGroup                  Destination = "MyGroup"
	DailyActivities          Destination = "DailyActivities"
	TrackColleaguesGroups    Destination = "TrackColleaguesGroups"
	Calendar                 Destination = "Calendar"
	DailyRoleSelection       Destination = "DailyRoleSelection"
	Agenda                   Destination = "Agenda"
	BusDriverDashboard       Destination = "BusDriverDashboard"
	BusDetails               Destination = "BusDetails"
	ParentDashboard          Destination = "ParentDashboard"
	AdminDashboard           Destination = "AdminDashboard"
	ViewDashboards           Destination = "ViewDashboards"
)

var (
	staffDestinations = []Destination{
		FritidspersonalDashboard, DailyActivities, MyGroup, TrackColleaguesGroups, Calendar, DailyRoleSelection,
	}
	teamLeadDestinations = append([]Destination{FritidsledareDashboard, WhatsToday}, staffDestinations...)

	destinations = map[string][]Destination{
		user.RoleTeamLead:   teamLeadDestinations,
		user.RoleStaff:      staffDestinations,
		user.RoleSubstitute: {Agenda, Calendar},
		user.RoleBusDriver:  {BusDriverDashboard, BusDetails},
		user.RoleParent:     {ParentDashboard},
		user.RoleAdmin: {
			AdminDashboard, ViewDashboards,
			FritidsledareDashboard, FritidspersonalDashboard, Agenda, BusDriverDashboard, ParentDashboard,
			Calendar,
		},
	}

	homes = map[string]Destination{
		user.RoleTeamLead:   FritidsledareDashboard,
		user.RoleStaff:      FritidspersonalDashboard,
		user.RoleSubstitute: Agenda,
		user.RoleBusDriver:  BusDriverDashboard,
		user.RoleParent:     ParentDashboard,
		user.RoleAdmin:      AdminDashboard,
	}
)

// Destinations returns the screens role may navigate to. Unknown roles get none.
func Destinations(role string) []Destination {
	return append([]Destination{}, destinations[role]...)
}

// Home is the dashboard of role.
func Home(role string) (Destination, bool) {
	d, ok := homes[role]
	return d, ok
}

// IsAllowed reports whether role may navigate to dest.
func IsAllowed(role string, dest Destination) bool {
	for _, d := range destinations[role] {
		if d == dest {
			return true
		}
	}
	return false
}

// SkipsRoleSelection reports whether role lands directly on its dashboard after login.
// Only the daily roles go through the role selection screen.
func SkipsRoleSelection(role string) bool {
	return !user.IsDailyRole(role)
}
