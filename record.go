package lifelog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	dateFormat     = "2006-01-02"
	dateTimeFormat = "2006-01-02 15:04:05"
	isoFormat      = "2006-01-02T15:04:05"
)

// Record is one flat row of domain data: a listening event, a transaction,
// a meal. Values are string, float64, bool, time.Time or []string.
// Records are read-only once loaded; every derived set is freshly allocated.
type Record map[string]interface{}

// Field resolves a possibly dot-pathed field name against the record.
// A missing segment resolves to absence, never an error.
func (r Record) Field(name string) (interface{}, bool) {
	if v, ok := r[name]; ok {
		return v, true
	}

	if !strings.Contains(name, ".") {
		return nil, false
	}

	var current interface{} = map[string]interface{}(r)
	for _, segment := range strings.Split(name, ".") {
		switch m := current.(type) {
		case map[string]interface{}:
			v, ok := m[segment]
			if !ok {
				return nil, false
			}
			current = v
		case Record:
			v, ok := m[segment]
			if !ok {
				return nil, false
			}
			current = v
		default:
			return nil, false
		}
	}

	return current, true
}

// Number coerces a field value with a permissive float parse: a string with
// a numeric prefix ("10abc") parses to its prefix, anything else fails.
func Number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		return parseFloatPrefix(n)
	}

	return 0, false
}

func parseFloatPrefix(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	end := 0
	seenDot := false
	for i, c := range s {
		if c == '-' || c == '+' {
			if i != 0 {
				break
			}
			end = i + 1
			continue
		}
		if c == '.' {
			if seenDot {
				break
			}
			seenDot = true
			end = i + 1
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		end = i + 1
	}

	// Optional exponent tail, only when followed by digits ("1e3" is 1000,
	// "1e" and "1ex" stop at the mantissa).
	if end > 0 && end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		expEnd := end + 1
		if expEnd < len(s) && (s[expEnd] == '+' || s[expEnd] == '-') {
			expEnd++
		}
		digits := expEnd
		for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
			digits++
		}
		if digits > expEnd {
			end = digits
		}
	}

	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}

	return f, true
}

// Time coerces a field value to a timestamp. Recognized string shapes are
// YYYY-MM-DD, YYYY-MM-DD HH:MM:SS and ISO-8601. An explicit UTC offset or
// Z suffix is dropped and the clock time is kept as naive wall-clock, which
// matches how the dashboards sidestep browser-local skew.
func Time(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		return parseTimeString(t)
	}

	return time.Time{}, false
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)

	if i := strings.IndexAny(s, "Zz"); i > 10 {
		s = s[:i]
	}
	if i := strings.LastIndexAny(s, "+-"); i > 10 {
		s = s[:i]
	}

	for _, layout := range []string{dateTimeFormat, isoFormat, dateFormat} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// String coerces a field value to its comparable string form. Timestamps
// collapse to their calendar day so that two events on the same date with
// different clock times compare equal.
func String(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case time.Time:
		return s.Format(dateFormat)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case nil:
		return ""
	}

	return fmt.Sprintf("%v", v)
}

// DistinctValues returns the distinct non-empty coerced values of a field
// across a record set, in first-seen order. Pages use it to populate
// multiselect and hierarchical filter widgets.
func DistinctValues(records []Record, field string) []string {
	values := make([]string, 0, len(records))
	for _, r := range records {
		v, ok := r.Field(field)
		if !ok {
			continue
		}

		switch list := v.(type) {
		case []string:
			values = append(values, list...)
		default:
			values = append(values, String(v))
		}
	}

	return uniqNonEmpty(values)
}

func uniqNonEmpty(values []string) []string {
	trimmed := lo.Map(values, func(s string, _ int) string {
		return strings.TrimSpace(s)
	})

	return lo.Uniq(lo.Compact(trimmed))
}
