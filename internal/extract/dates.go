package extract

import (
	"strconv"
	"strings"
	"time"
)

// isoInstant is the storage serialization for all dates.
const isoInstant = "2006-01-02T15:04:05.000Z"

// ValidDate reports whether a statement date cell is well-formed. Slash
// delimited M/D/Y strings are checked component-by-component so impossible
// calendar dates (2/30, 4/31) are rejected instead of being rolled over by a
// lenient parser. Anything else must parse as an ISO date.
func ValidDate(s string) bool {
	if strings.Contains(s, "/") {
		m, d, y, ok := splitSlashDate(s)
		if !ok {
			return false
		}
		t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
		return t.Year() == y && int(t.Month()) == m && t.Day() == d
	}
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

// ToISO converts a validated date cell to an ISO-8601 instant at UTC
// midnight. Callers must check ValidDate first.
func ToISO(s string) string {
	if strings.Contains(s, "/") {
		m, d, y, ok := splitSlashDate(s)
		if !ok {
			return ""
		}
		return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC).Format(isoInstant)
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC().Format(isoInstant)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(isoInstant)
	}
	return ""
}

func splitSlashDate(s string) (month, day, year int, ok bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, false
	}
	day, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, false
	}
	year, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, false
	}
	return month, day, year, true
}
