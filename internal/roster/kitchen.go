package roster

import "time"

// CanAssignToKitchenDuty reports whether the member may be assigned to
// kitchen duty on the given calendar date. The rule is a pure disjunction of
// absolute exclusions; a member holding several roles is excluded when any
// held role triggers an exclusion for the date:
//
//   - PraiseTeam members are excluded on Saturdays.
//   - DTS participants are excluded on Saturdays and Sundays.
//   - Missionaries are excluded every day.
func CanAssignToKitchenDuty(m *Member, date time.Time) bool {
	if m == nil {
		return false
	}
	if m.HasRole(RoleMissionary) {
		return false
	}
	weekday := date.Weekday()
	if weekday == time.Saturday && m.HasRole(RolePraiseTeam) {
		return false
	}
	if (weekday == time.Saturday || weekday == time.Sunday) && m.HasRole(RoleDTS) {
		return false
	}
	return true
}
