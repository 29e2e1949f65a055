package roster

import (
	"math"
	"time"
)

// reminderLeadMinutes bounds how far ahead an event may be and still warrant
// a reminder.
const reminderLeadMinutes = 15

// ShouldSendReminder reports whether an event scheduled at scheduledAt is
// due for a reminder when observed at now. The distance is measured in whole
// minutes rounded to the nearest minute and must fall in the closed interval
// [0, 15]: past events and events more than a quarter hour away are not due.
func ShouldSendReminder(now, scheduledAt time.Time) bool {
	minutes := math.Round(scheduledAt.Sub(now).Minutes())
	return minutes >= 0 && minutes <= reminderLeadMinutes
}
