// Package export renders roster data as plain-text tables for terminal
// display and printable weekly handouts.
package export

import (
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/example/community-roster/internal/application"
	"github.com/example/community-roster/internal/roster"
)

// WeekTable renders one row per duty category with a column for each day of
// the week starting at weekStart. Cell contents are assignee names resolved
// through the members map, falling back to the raw member ID.
func WeekTable(weekStart time.Time, duties []application.Duty, members map[string]application.Member) string {
	days := roster.DaysOfWeek(weekStart)

	cells := make(map[roster.Category][7][]string)
	for _, duty := range duties {
		idx := dayIndex(days, duty.Date)
		if idx < 0 {
			continue
		}
		row := cells[duty.Category]
		for _, memberID := range duty.Assignees {
			row[idx] = append(row[idx], displayName(members, memberID))
		}
		cells[duty.Category] = row
	}

	tw := table.NewWriter()
	header := table.Row{"Category"}
	for _, day := range days {
		header = append(header, day.Format("Mon 01-02"))
	}
	tw.AppendHeader(header)

	for _, category := range roster.Categories() {
		row := table.Row{string(category)}
		dayCells := cells[category]
		for i := range days {
			row = append(row, strings.Join(dayCells[i], ", "))
		}
		tw.AppendRow(row)
	}

	return tw.Render()
}

// MemberTable renders the member directory with their role tags.
func MemberTable(members []application.Member) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"ID", "Name", "Email", "Roles"})
	for _, member := range members {
		roles := make([]string, len(member.Roles))
		for i, role := range member.Roles {
			roles[i] = string(role)
		}
		tw.AppendRow(table.Row{
			member.ID,
			strings.TrimSpace(member.FirstName + " " + member.LastName),
			member.Email,
			strings.Join(roles, ", "),
		})
	}
	return tw.Render()
}

func dayIndex(days [7]time.Time, date time.Time) int {
	for i, day := range days {
		if day.Year() == date.Year() && day.YearDay() == date.YearDay() {
			return i
		}
	}
	return -1
}

func displayName(members map[string]application.Member, memberID string) string {
	member, ok := members[memberID]
	if !ok {
		return memberID
	}
	name := strings.TrimSpace(member.FirstName + " " + member.LastName)
	if name == "" {
		return memberID
	}
	return name
}
