package payload

import (
	"fmt"
	"strings"
	"time"
)

// NoPeriod buckets rows whose date cannot be parsed.
const NoPeriod = "no-period"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"2006-01",
}

// MonthKey returns the YYYY-MM bucket of a free-form date, or NoPeriod.
func MonthKey(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return NoPeriod
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
		}
	}
	return NoPeriod
}

// parsePeriodKey splits a YYYY-MM key.
func parsePeriodKey(key string) (year, month int, ok bool) {
	t, err := time.Parse("2006-01", strings.TrimSpace(key))
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), int(t.Month()), true
}
