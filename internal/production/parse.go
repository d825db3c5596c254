package production

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cast"
)

var (
	monthDayYear = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
	isoPrefix    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	// Bare digit runs other than a year are serials or timestamps, not dates.
	digitsOnly = regexp.MustCompile(`^\d+$`)
)

const isoDate = "2006-01-02"

// ParseDate converts a raw date cell into YYYY-MM-DD.
//
// Numeric dates are always read month first (MM/DD/YYYY), matching the
// backend's export locale. Values that cannot be interpreted come back
// trimmed but otherwise untouched.
func ParseDate(raw any) string {
	if isBlank(raw) {
		return ""
	}
	str := strings.TrimSpace(stringify(raw))

	if m := monthDayYear.FindStringSubmatch(str); m != nil {
		return m[3] + "-" + padTwo(m[1]) + "-" + padTwo(m[2])
	}
	if isoPrefix.MatchString(str) {
		return str[:10]
	}
	if digitsOnly.MatchString(str) && len(str) != 4 {
		return str
	}
	if t, err := dateparse.ParseIn(str, time.UTC); err == nil && t.Year() > 0 {
		return t.UTC().Format(isoDate)
	}
	return str
}

// DisplayDate renders a canonical date as DD/MM/YYYY. Anything that is not a
// canonical date, including the Unknown bucket, is returned unchanged.
func DisplayDate(iso string) string {
	t, err := time.Parse(isoDate, iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}

// ParseNumber converts a raw quantity cell into a finite number, defaulting
// to 0. Thousands separators (commas) are stripped; decimal commas are not
// supported.
func ParseNumber(raw any) float64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case bool:
		return 0
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if cleaned == "" {
			return 0
		}
		return finite(cast.ToFloat64E(cleaned))
	default:
		return finite(cast.ToFloat64E(v))
	}
}

func finite(v float64, err error) float64 {
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// stringify renders a raw cell the way it would be displayed.
func stringify(raw any) string {
	if raw == nil {
		return ""
	}
	if s, err := cast.ToStringE(raw); err == nil {
		return s
	}
	return fmt.Sprint(raw)
}

// isBlank reports the values the backend uses for "no value": nil, empty
// string, numeric zero and false.
func isBlank(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case float64:
		return v == 0 || math.IsNaN(v)
	case float32:
		return v == 0
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToInt64(v) == 0
	default:
		return false
	}
}

func padTwo(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}
