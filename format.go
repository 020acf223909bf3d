package lifelog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders an aggregation result for a KPI card: rounded to the
// spec's decimals, optionally compacted (1.2K, 3.4M), with prefix/suffix.
func (s MetricSpec) Format(v float64) string {
	d := decimal.NewFromFloat(safeNumber(v))

	if s.CompactNumbers {
		return s.Prefix + compactNumber(d) + s.Suffix
	}

	text := groupThousands(d.Round(int32(s.Decimals)).StringFixed(int32(s.Decimals)))

	return s.Prefix + text + s.Suffix
}

var compactSteps = []struct {
	limit  decimal.Decimal
	suffix string
}{
	{decimal.NewFromInt(1_000_000_000), "B"},
	{decimal.NewFromInt(1_000_000), "M"},
	{decimal.NewFromInt(1_000), "K"},
}

func compactNumber(d decimal.Decimal) string {
	abs := d.Abs()
	for _, step := range compactSteps {
		if abs.GreaterThanOrEqual(step.limit) {
			return trimZeros(d.Div(step.limit).Round(1).StringFixed(1)) + step.suffix
		}
	}

	return trimZeros(d.Round(1).StringFixed(1))
}

func trimZeros(s string) string {
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}

	return s
}

// groupThousands inserts comma separators into the integer part.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart := s
	frac := ""
	if at := strings.Index(s, "."); at >= 0 {
		intPart, frac = s[:at], s[at:]
	}

	if len(intPart) > 3 {
		var parts []string
		for len(intPart) > 3 {
			parts = append([]string{intPart[len(intPart)-3:]}, parts...)
			intPart = intPart[:len(intPart)-3]
		}
		parts = append([]string{intPart}, parts...)
		intPart = strings.Join(parts, ",")
	}

	return sign + intPart + frac
}
