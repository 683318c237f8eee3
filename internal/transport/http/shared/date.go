package shared

import (
	"strings"
	"time"
)

// DateLayout is the only calendar-date form the API accepts.
const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD date as midnight UTC. The empty string yields
// the zero time.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, value)
}
