package roster

import (
	"testing"
	"time"
)

func TestShouldSendReminder(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.January, 22, 6, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		scheduledAt time.Time
		want        bool
	}{
		{"event right now", now, true},
		{"ten minutes ahead", now.Add(10 * time.Minute), true},
		{"exactly fifteen minutes ahead", now.Add(15 * time.Minute), true},
		{"twenty minutes ahead", now.Add(20 * time.Minute), false},
		{"one minute past", now.Add(-time.Minute), false},
		{"rounds fractional minutes to nearest", now.Add(15*time.Minute + 20*time.Second), true},
		{"rounds up past the window", now.Add(15*time.Minute + 40*time.Second), false},
		{"far future", now.Add(3 * time.Hour), false},
		{"yesterday", now.Add(-24 * time.Hour), false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ShouldSendReminder(now, tc.scheduledAt); got != tc.want {
				t.Errorf("ShouldSendReminder(now, now%+s) = %v, want %v", tc.scheduledAt.Sub(now), got, tc.want)
			}
		})
	}
}
