package roster

import "time"

// Role is a membership tag granting access or assignment permissions. A member
// may hold any number of roles simultaneously.
type Role string

const (
	// RoleAdmin grants unrestricted access to every schedule category.
	RoleAdmin Role = "admin"
	// RoleStaff identifies community staff members.
	RoleStaff Role = "staff"
	// RoleMissionary identifies long-term missionaries.
	RoleMissionary Role = "missionary"
	// RoleChef manages the kitchen rotation.
	RoleChef Role = "chef"
	// RoleWorkDutyManager manages the general work duty rotation.
	RoleWorkDutyManager Role = "work_duty_manager"
	// RoleDTS identifies discipleship training school participants.
	RoleDTS Role = "dts"
	// RolePraiseTeam identifies praise team members.
	RolePraiseTeam Role = "praise_team"
	// RoleFriend is the default tag for members holding no other role.
	RoleFriend Role = "friend"
)

// Roles lists every recognised role tag.
func Roles() []Role {
	return []Role{
		RoleAdmin,
		RoleStaff,
		RoleMissionary,
		RoleChef,
		RoleWorkDutyManager,
		RoleDTS,
		RolePraiseTeam,
		RoleFriend,
	}
}

// ValidRole reports whether the tag belongs to the fixed role enumeration.
func ValidRole(role Role) bool {
	for _, known := range Roles() {
		if role == known {
			return true
		}
	}
	return false
}

// Category identifies one of the three duty rotations managed by the system.
type Category string

const (
	// CategoryMeditation covers meditation leadership sessions.
	CategoryMeditation Category = "meditation"
	// CategoryCooking covers kitchen cooking and washing slots.
	CategoryCooking Category = "cooking"
	// CategoryWorkDuty covers general work duty tasks.
	CategoryWorkDuty Category = "work_duty"
)

// Categories lists every recognised duty category.
func Categories() []Category {
	return []Category{CategoryMeditation, CategoryCooking, CategoryWorkDuty}
}

// ValidCategory reports whether the category belongs to the fixed enumeration.
func ValidCategory(category Category) bool {
	switch category {
	case CategoryMeditation, CategoryCooking, CategoryWorkDuty:
		return true
	}
	return false
}

// Member carries the identity attributes the rule engine evaluates. It is a
// read-only projection of a community member; the engine never mutates it.
type Member struct {
	ID    string
	Roles []Role
}

// HasRole reports whether the member holds the given role. A nil member, as
// seen for unauthenticated callers, holds no roles.
func (m *Member) HasRole(role Role) bool {
	if m == nil {
		return false
	}
	for _, held := range m.Roles {
		if held == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the member holds at least one of the given roles.
func (m *Member) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if m.HasRole(role) {
			return true
		}
	}
	return false
}

// WeekOf returns the Monday 00:00 start of the week containing ref, in the
// supplied location. A nil location falls back to ref's own location.
func WeekOf(ref time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = ref.Location()
	}
	local := ref.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return day.AddDate(0, 0, -offset)
}

// DaysOfWeek expands a week start into its seven consecutive calendar days.
func DaysOfWeek(weekStart time.Time) [7]time.Time {
	var days [7]time.Time
	for i := range days {
		days[i] = weekStart.AddDate(0, 0, i)
	}
	return days
}
