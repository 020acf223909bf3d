package lifelog

import (
	"math"
)

// Aggregation names a reduction over a record set.
type Aggregation string

const (
	AggSum           Aggregation = "sum"
	AggCount         Aggregation = "count"
	AggCountDistinct Aggregation = "count_distinct"
	AggAverage       Aggregation = "average"

	// AggCumSum sums per bucket like AggSum; the running total is a 1-D
	// post-step (Cumulative), never applied inside a bucket.
	AggCumSum Aggregation = "cumsum"
)

// MetricSpec declares what to compute from a record set and how to display
// it on a KPI card. Field is required for every aggregation except count.
type MetricSpec struct {
	Key   string `json:"value"`
	Label string `json:"label"`

	Field       string      `json:"field"`
	Aggregation Aggregation `json:"aggregation"`

	// Display formatting.
	Decimals       int    `json:"decimals,omitempty"`
	Prefix         string `json:"prefix,omitempty"`
	Suffix         string `json:"suffix,omitempty"`
	CompactNumbers bool   `json:"compactNumbers,omitempty"`

	// AND-combined row conditions.
	FilterConditions []FilterCondition `json:"filterConditions,omitempty"`

	// Legacy single-field filter, kept for old page configs.
	FilterField string      `json:"filterField,omitempty"`
	FilterValue interface{} `json:"filterValue,omitempty"`

	// Data substitutes the page-level record set for this metric only.
	Data []Record `json:"-"`

	// DateField overrides the date column convention for the override set.
	DateField string `json:"dateColumnName,omitempty"`
}

// ApplyMetricFilters reduces records to the subset matching every condition
// of the spec. With no filter configured the original slice comes back by
// reference, so callers must not assume a fresh identity when unfiltered.
func ApplyMetricFilters(records []Record, spec MetricSpec) []Record {
	conditions := spec.FilterConditions
	if len(conditions) == 0 && spec.FilterField != "" {
		conditions = []FilterCondition{{
			Field:    spec.FilterField,
			Operator: OpEq,
			Value:    spec.FilterValue,
		}}
	}

	if len(conditions) == 0 {
		return records
	}

	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		pass := true
		for _, c := range conditions {
			if !c.Match(r) {
				pass = false
				break
			}
		}
		if pass {
			filtered = append(filtered, r)
		}
	}

	return filtered
}

// Aggregate reduces a record set and field to a single number.
//
// Unparsable values contribute 0 to sums and are excluded from the average
// denominator. count ignores the field. count_distinct compares timestamps
// by calendar day. The result is always finite.
func Aggregate(records []Record, field string, kind Aggregation) float64 {
	switch kind {
	case AggCount:
		return float64(len(records))

	case AggCountDistinct:
		seen := make(map[string]struct{}, len(records))
		for _, r := range records {
			v, ok := r.Field(field)
			if !ok {
				continue
			}
			seen[String(v)] = struct{}{}
		}
		return float64(len(seen))

	case AggAverage:
		var sum float64
		var n int
		for _, r := range records {
			v, ok := r.Field(field)
			if !ok {
				continue
			}
			f, ok := Number(v)
			if !ok {
				continue
			}
			sum += f
			n++
		}
		if n == 0 {
			return 0
		}
		return safeNumber(sum / float64(n))

	case AggSum, AggCumSum:
		var sum float64
		for _, r := range records {
			v, ok := r.Field(field)
			if !ok {
				continue
			}
			if f, ok := Number(v); ok {
				sum += f
			}
		}
		return safeNumber(sum)
	}

	return 0
}

// Evaluate runs the full metric pipeline: resolve the source (per-metric
// override or the page-level set), apply the metric filters, aggregate.
func (s MetricSpec) Evaluate(records []Record) float64 {
	return Aggregate(s.resolve(records), s.Field, s.Aggregation)
}

// DefaultDateField is the date column convention pages rely on when a
// metric does not override it.
const DefaultDateField = "date"

// SeriesOver buckets the metric's records by calendar period. A metric with
// a Data override brings its own date-column convention via DateField.
func (s MetricSpec) SeriesOver(records []Record, period Period) []SeriesPoint {
	dateField := s.DateField
	if dateField == "" {
		dateField = DefaultDateField
	}

	return GroupByPeriod(s.resolve(records), dateField, period, s.Field, s.Aggregation)
}

func (s MetricSpec) resolve(records []Record) []Record {
	source := records
	if s.Data != nil {
		source = s.Data
	}

	return ApplyMetricFilters(source, s)
}

// safeNumber clamps NaN and Inf to 0 so that no aggregation result can
// poison a rendered dashboard.
func safeNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return v
}
