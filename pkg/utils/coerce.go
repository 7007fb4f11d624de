package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	numberPattern  = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

	numberCleaner = strings.NewReplacer(
		"\u00a0", "",
		"\u202f", "",
		" ", "",
		"€", "",
		"m³", "",
		",", ".",
	)
)

// Location is the zone epoch timestamps are converted into. The portal serves
// Île-de-France customers, so calendar days follow Paris time.
var Location = loadLocation("Europe/Paris")

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// yearFirstLayouts are tried when the text starts with YYYY-MM-DD
var yearFirstLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// dayFirstLayouts cover the European formats the portal renders, plus the
// year-first forms the ISO prefix check cannot see
var dayFirstLayouts = []string{
	"2/1/2006",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15h04",
	"2-1-2006",
	"2-1-2006 15:04:05",
	"2.1.2006",
	"2/1/06",
	"2006/1/2",
	"2006/1/2 15:04:05",
	// year-first without zero padding, or without separators
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2T15:04:05",
	"20060102",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseNumber coerces a JSON scalar into a float. Numbers pass through; text is
// cleaned of currency and unit glyphs, spaces used as thousands separators
// and decimal commas, then the first signed decimal found anywhere in it is
// returned.
func ParseNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		cleaned := numberCleaner.Replace(strings.TrimSpace(val))
		match := numberPattern.FindString(cleaned)
		if match == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Epoch bounds keep timestamps inside calendar years 1 to 9999. Millisecond
// timestamps fall outside them and are rejected rather than read as seconds.
const (
	minEpochSeconds = -62135596800 // 0001-01-01T00:00:00Z
	maxEpochSeconds = 253402300799 // 9999-12-31T23:59:59Z
)

// ParseDate coerces a JSON scalar into a time. Numbers are POSIX epoch seconds;
// text starting with YYYY-MM-DD is read year-first, anything else day-first.
func ParseDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || val < minEpochSeconds || val > maxEpochSeconds {
			return time.Time{}, false
		}
		sec, frac := math.Modf(val)
		return fromEpoch(int64(sec), int64(frac*1e9))
	case int64:
		return fromEpoch(val, 0)
	case int:
		return fromEpoch(int64(val), 0)
	case time.Time:
		return val, true
	case string:
		return parseDateText(strings.TrimSpace(val))
	default:
		return time.Time{}, false
	}
}

func fromEpoch(sec, nsec int64) (time.Time, bool) {
	if sec < minEpochSeconds || sec > maxEpochSeconds {
		return time.Time{}, false
	}
	t := time.Unix(sec, nsec).In(Location)
	if y := t.Year(); y < 1 || y > 9999 {
		return time.Time{}, false
	}
	return t, true
}

func parseDateText(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if isoDatePattern.MatchString(s) {
		if t, ok := tryLayouts(s, yearFirstLayouts); ok {
			return t, true
		}
		// trailing text we do not understand; the date prefix is enough
		return tryLayouts(s[:10], yearFirstLayouts)
	}
	return tryLayouts(s, dayFirstLayouts)
}

func tryLayouts(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RoundMoney rounds a currency amount to cents
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundMoneyPtr rounds an optional amount, keeping nil as nil
func RoundMoneyPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := RoundMoney(*v)
	return &r
}

// Round6 rounds to six decimals, the precision used to compare records
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
