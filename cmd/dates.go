package cmd

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// parseDay converts a date argument to an epoch-day offset. Besides
// YYYY-MM-DD dates it accepts "today" and signed offsets like "+3" or "-1"
// relative to today.
func parseDay(arg string, now time.Time) (int64, error) {
	today := now.UTC().Unix() / 86400

	switch {
	case arg == "" || strings.EqualFold(arg, "today"):
		return today, nil
	case strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-"):
		var offset int64
		if _, err := fmt.Sscanf(arg, "%d", &offset); err != nil {
			return 0, fmt.Errorf("invalid day offset %q", arg)
		}
		return today + offset, nil
	}

	t, err := time.Parse(dateLayout, arg)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q, want YYYY-MM-DD, today, or a +/- day offset", arg)
	}
	return t.Unix() / 86400, nil
}

// formatDay renders an epoch-day offset as a calendar date.
func formatDay(day int64) string {
	return time.Unix(day*86400, 0).UTC().Format(dateLayout)
}
