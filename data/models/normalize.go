package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bcampbell/fuzzytime"
	"github.com/itlightning/dateparse"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	looseISODate = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	clockTime    = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})(?:\s*(AM|PM))?$`)
)

// NormalizeDate converts s to YYYY-MM-DD. Year-month-day input with or
// without zero padding is checked for calendar validity; anything else goes
// through dateparse and then fuzzytime, interpreted in UTC.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalidDate(s)
	}

	if m := looseISODate.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes overflow, so 2023-02-30 comes back as March
		if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
			return "", invalidDate(s)
		}
		return t.Format(DateLayout), nil
	}

	if t, err := dateparse.ParseIn(s, time.UTC); err == nil && t.Year() != 0 {
		return t.UTC().Format(DateLayout), nil
	}

	dt, _, err := fuzzytime.Extract(s)
	if err == nil && !dt.Empty() {
		iso := dt.ISOFormat()
		if len(iso) >= len(DateLayout) {
			if t, err := time.Parse(DateLayout, iso[:len(DateLayout)]); err == nil {
				return t.Format(DateLayout), nil
			}
		}
	}

	return "", invalidDate(s)
}

// NormalizeTime converts H:MM, HH:MM, or either with an AM/PM suffix to
// zero-padded 24-hour HH:MM. With a suffix the hour must be 1-12.
func NormalizeTime(s string) (string, error) {
	m := clockTime.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", &ValidationError{Field: "time", Message: "Invalid time format. Use HH:MM or HH:MM AM/PM"}
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 {
		return "", invalidTime(s)
	}

	switch strings.ToUpper(m[3]) {
	case "":
		if hour > 23 {
			return "", invalidTime(s)
		}
	case "AM":
		if hour < 1 || hour > 12 {
			return "", invalidTime(s)
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return "", invalidTime(s)
		}
		if hour != 12 {
			hour += 12
		}
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func invalidDate(s string) *ValidationError {
	return &ValidationError{Field: "date", Message: fmt.Sprintf("Invalid date format: %q", s)}
}

func invalidTime(s string) *ValidationError {
	return &ValidationError{Field: "time", Message: fmt.Sprintf("Invalid time value: %q", s)}
}
