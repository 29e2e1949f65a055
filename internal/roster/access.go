package roster

import "time"

// CanAccessSchedule reports whether the member may view schedules of the
// given category. Admin, Missionary, and Staff see every category; Chef sees
// cooking; WorkDutyManager sees work duty; DTS sees everything except
// meditation. Unknown categories and nil members are denied.
//
// TODO: confirm with the office whether Staff access should be narrowed to
// their own schedule instead of every category.
func CanAccessSchedule(m *Member, category Category) bool {
	if m == nil || !ValidCategory(category) {
		return false
	}
	if m.HasAnyRole(RoleAdmin, RoleMissionary, RoleStaff) {
		return true
	}
	switch category {
	case CategoryCooking:
		if m.HasRole(RoleChef) {
			return true
		}
	case CategoryWorkDuty:
		if m.HasRole(RoleWorkDutyManager) {
			return true
		}
	}
	if m.HasRole(RoleDTS) && category != CategoryMeditation {
		return true
	}
	return false
}

// CanCreateSchedule reports whether the member may create schedules of the
// given category. Meditation is reserved for Admin; cooking for Chef or
// Admin; work duty for WorkDutyManager or Admin.
func CanCreateSchedule(m *Member, category Category) bool {
	if m == nil {
		return false
	}
	switch category {
	case CategoryMeditation:
		return m.HasRole(RoleAdmin)
	case CategoryCooking:
		return m.HasAnyRole(RoleChef, RoleAdmin)
	case CategoryWorkDuty:
		return m.HasAnyRole(RoleWorkDutyManager, RoleAdmin)
	}
	return false
}

// CanEditSchedule reports whether the member may submit an edit to a cooking
// or work duty schedule at the supplied wall-clock instant. Only Admin may
// edit, and only inside the weekly edit window: Monday 00:00 through Friday
// 18:00. The window gates when edits may be submitted, not which dates may
// be edited.
func CanEditSchedule(m *Member, category Category, now time.Time) bool {
	if !m.HasRole(RoleAdmin) {
		return false
	}
	if category != CategoryCooking && category != CategoryWorkDuty {
		return false
	}
	return WithinEditWindow(now)
}

// WithinEditWindow reports whether the instant falls inside the weekly
// schedule edit window. Saturday, Sunday, and Friday from 18:00 onward are
// outside the window.
func WithinEditWindow(now time.Time) bool {
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	case time.Friday:
		return now.Hour() < 18
	}
	return true
}
