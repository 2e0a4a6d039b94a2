package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Serial day 1 lands on 1899-12-31: the anchor is the day before, which
// matches the usual spreadsheet off-by-one convention.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var (
	canonicalDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	isoPrefixRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	datePartsRe     = regexp.MustCompile(`[/\-.]`)
)

var fallbackLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2 January 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// NormalizeDate canonicalizes a heterogeneous date representation to
// DD/MM/YYYY. The second return is false when the value is absent or
// unrecoverable; that is never an error, the date is simply dropped.
// Feeding a canonical string back in reproduces it unchanged.
func NormalizeDate(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case time.Time:
		return formatBounded(v)
	case float64:
		return serialToDate(v)
	case int:
		return serialToDate(float64(v))
	case int64:
		return serialToDate(float64(v))
	case string:
		return normalizeDateString(v)
	default:
		return "", false
	}
}

func normalizeDateString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "null", "undefined":
		return "", false
	}

	// Already day/month/year with a 4-digit year.
	if m := canonicalDateRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return formatParts(day, month, year)
	}

	// ISO timestamps and dates.
	if strings.ContainsAny(s, "TZ") || isoPrefixRe.MatchString(s) {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return formatBounded(t)
			}
		}
		return "", false
	}

	// Three separated parts: month-first unless the first part exceeds 12.
	if parts := datePartsRe.Split(s, -1); len(parts) == 3 {
		if out, ok := resolveAmbiguousParts(parts); ok {
			return out, true
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return formatBounded(t)
		}
	}
	return "", false
}

func resolveAmbiguousParts(parts []string) (string, bool) {
	first, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	second, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}

	var day, month int
	if first > 12 {
		day, month = first, second
	} else {
		month, day = first, second
	}

	if year < 100 {
		year += 2000
	}
	return formatParts(day, month, year)
}

func serialToDate(serial float64) (string, bool) {
	t := serialEpoch.AddDate(0, 0, int(serial)-1)
	if y := t.Year(); y <= 1900 || y >= 2100 {
		return "", false
	}
	return t.Format("02/01/2006"), true
}

func formatBounded(t time.Time) (string, bool) {
	if y := t.Year(); y <= 1900 || y >= 2100 {
		return "", false
	}
	return t.Format("02/01/2006"), true
}

func formatParts(day, month, year int) (string, bool) {
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", false
	}
	if year < 1900 || year >= 2100 {
		return "", false
	}
	return fmt.Sprintf("%02d/%02d/%04d", day, month, year), true
}
