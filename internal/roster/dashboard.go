package roster

// Route identifies a dashboard landing destination.
type Route string

const (
	// RouteAdmin is the administrator dashboard.
	RouteAdmin Route = "/admin"
	// RouteKitchen is the kitchen rotation dashboard.
	RouteKitchen Route = "/kitchen"
	// RouteWorkDuty is the work duty rotation dashboard.
	RouteWorkDuty Route = "/work-duty"
	// RouteMissionary is the missionary dashboard.
	RouteMissionary Route = "/missionary"
	// RouteDTS is the discipleship training school dashboard.
	RouteDTS Route = "/dts"
	// RouteStaff is the staff dashboard.
	RouteStaff Route = "/staff"
	// RouteLogin is the landing page for members without a dashboard role and
	// for unauthenticated callers.
	RouteLogin Route = "/login"
)

// dashboardPriority orders role to route pairs from highest to lowest
// priority. The first held role wins, so a member holding both Admin and
// Chef always lands on the admin dashboard.
var dashboardPriority = []struct {
	Role  Role
	Route Route
}{
	{RoleAdmin, RouteAdmin},
	{RoleChef, RouteKitchen},
	{RoleWorkDutyManager, RouteWorkDuty},
	{RoleMissionary, RouteMissionary},
	{RoleDTS, RouteDTS},
	{RoleStaff, RouteStaff},
}

// DashboardForUser resolves the single landing route for the member's
// highest-priority role. Members matching no dashboard role, including
// Friend-only members and nil members, land on the login route.
func DashboardForUser(m *Member) Route {
	for _, entry := range dashboardPriority {
		if m.HasRole(entry.Role) {
			return entry.Route
		}
	}
	return RouteLogin
}
