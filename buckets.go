package lifelog

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DayPart is one fixed time-of-day window used for heatmap bucketing.
type DayPart string

const (
	DayPartMorning   DayPart = "Morning"   // 06:00–11:59
	DayPartAfternoon DayPart = "Afternoon" // 12:00–17:59
	DayPartEvening   DayPart = "Evening"   // 18:00–23:59
	DayPartNight     DayPart = "Night"     // 00:00–05:59

	// DayPartUnknown flags date-only records: exact midnight usually means
	// the source had no real time of day (paper books, daily summaries).
	DayPartUnknown DayPart = "Unknown"
)

// Weekdays are the row/column labels in Monday-first order.
var Weekdays = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DayParts are the day-part labels in display order, without Unknown.
var DayParts = [4]DayPart{DayPartMorning, DayPartAfternoon, DayPartEvening, DayPartNight}

// DayPartOf maps a timestamp to its day part. With midnightUnknown set, an
// exact 00:00:00 clock lands in Unknown instead of Night.
func DayPartOf(t time.Time, midnightUnknown bool) DayPart {
	if midnightUnknown && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return DayPartUnknown
	}

	switch h := t.Hour(); {
	case h >= 6 && h < 12:
		return DayPartMorning
	case h >= 12 && h < 18:
		return DayPartAfternoon
	case h >= 18:
		return DayPartEvening
	default:
		return DayPartNight
	}
}

// WeekdayIndex remaps Go's Sunday-first weekday to a Monday-first 0–6 index.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Axis names a logical heatmap axis.
type Axis string

const (
	AxisWeekday Axis = "weekday"
	AxisDayPart Axis = "daypart"
)

// HeatmapSpec declares a weekday × day-part heatmap. Build it through
// NewHeatmapSpec so an axis collision is corrected and logged up front
// instead of surfacing as a runtime branch in the grouping loop.
type HeatmapSpec struct {
	DateField   string
	Field       string
	Aggregation Aggregation

	RowAxis    Axis
	ColumnAxis Axis

	// MidnightUnknown routes exact-midnight records to the Unknown bucket.
	MidnightUnknown bool
}

// NewHeatmapSpec validates the axis assignment. rowAxis == columnAxis falls
// back to the default layout (weekday rows, day-part columns).
func NewHeatmapSpec(dateField, field string, agg Aggregation, rowAxis, columnAxis Axis, opts ...Option) HeatmapSpec {
	o := applyOptions(opts)

	if rowAxis == columnAxis || !validAxis(rowAxis) || !validAxis(columnAxis) {
		o.logger.Warn("invalid heatmap axis assignment, using defaults",
			zap.String("rowAxis", string(rowAxis)),
			zap.String("columnAxis", string(columnAxis)),
		)
		rowAxis, columnAxis = AxisWeekday, AxisDayPart
	}

	return HeatmapSpec{
		DateField:   dateField,
		Field:       field,
		Aggregation: agg,
		RowAxis:     rowAxis,
		ColumnAxis:  columnAxis,
	}
}

func validAxis(a Axis) bool {
	return a == AxisWeekday || a == AxisDayPart
}

// Heatmap is a computed 2-D bucket matrix. Values are stored canonically by
// (weekday, day part); the axis assignment only changes how Rows, Columns
// and Value iterate, so swapping axes never recomputes anything.
type Heatmap struct {
	rowAxis    Axis
	columnAxis Axis

	parts []DayPart
	grid  [7]map[DayPart]float64
}

// BuildHeatmap groups records into weekday × day-part buckets and aggregates
// each cell. Records with an unparsable date are skipped. cumsum degenerates
// to sum: a 2-D grid has no natural ordering for a running total.
func BuildHeatmap(records []Record, spec HeatmapSpec) *Heatmap {
	agg := spec.Aggregation
	if agg == AggCumSum {
		agg = AggSum
	}

	buckets := make(map[int]map[DayPart][]Record)
	hasUnknown := false
	for _, r := range records {
		v, ok := r.Field(spec.DateField)
		if !ok {
			continue
		}
		t, ok := Time(v)
		if !ok {
			continue
		}

		day := WeekdayIndex(t)
		part := DayPartOf(t, spec.MidnightUnknown)
		if part == DayPartUnknown {
			hasUnknown = true
		}

		if buckets[day] == nil {
			buckets[day] = make(map[DayPart][]Record)
		}
		buckets[day][part] = append(buckets[day][part], r)
	}

	parts := DayParts[:]
	if hasUnknown {
		parts = append(parts, DayPartUnknown)
	}

	h := &Heatmap{
		rowAxis:    spec.RowAxis,
		columnAxis: spec.ColumnAxis,
		parts:      parts,
	}

	for day := 0; day < 7; day++ {
		h.grid[day] = make(map[DayPart]float64, len(parts))
		for _, part := range parts {
			h.grid[day][part] = Aggregate(buckets[day][part], spec.Field, agg)
		}
	}

	return h
}

// Swap exchanges the row and column axes. Display-time only: bucket values
// stay untouched.
func (h *Heatmap) Swap() {
	h.rowAxis, h.columnAxis = h.columnAxis, h.rowAxis
}

// Rows returns the row labels for the current axis assignment.
func (h *Heatmap) Rows() []string {
	return h.axisLabels(h.rowAxis)
}

// Columns returns the column labels for the current axis assignment.
func (h *Heatmap) Columns() []string {
	return h.axisLabels(h.columnAxis)
}

func (h *Heatmap) axisLabels(a Axis) []string {
	if a == AxisDayPart {
		return lo.Map(h.parts, func(p DayPart, _ int) string {
			return string(p)
		})
	}

	return Weekdays[:]
}

// Value returns the cell at (row, col) under the current axis assignment.
// Out-of-range indices yield 0.
func (h *Heatmap) Value(row, col int) float64 {
	day, partIdx := row, col
	if h.rowAxis == AxisDayPart {
		day, partIdx = col, row
	}

	if day < 0 || day >= 7 || partIdx < 0 || partIdx >= len(h.parts) {
		return 0
	}

	return h.grid[day][h.parts[partIdx]]
}

// Period is a 1-D calendar bucket size for time series.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// SeriesPoint is one 1-D bucket: a period or category key and its value.
type SeriesPoint struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// GroupByPeriod buckets records by calendar period and aggregates each
// bucket, returning points in chronological key order. Records with an
// unparsable date are skipped. For cumsum the per-bucket sums are turned
// into a running total as a post-step after bucket aggregation.
func GroupByPeriod(records []Record, dateField string, period Period, field string, agg Aggregation) []SeriesPoint {
	bucketAgg := agg
	if bucketAgg == AggCumSum {
		bucketAgg = AggSum
	}

	buckets := make(map[string][]Record)
	for _, r := range records {
		v, ok := r.Field(dateField)
		if !ok {
			continue
		}
		t, ok := Time(v)
		if !ok {
			continue
		}

		key := periodKey(t, period)
		buckets[key] = append(buckets[key], r)
	}

	keys := lo.Keys(buckets)
	sort.Strings(keys)

	points := make([]SeriesPoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, SeriesPoint{
			Key:   key,
			Value: Aggregate(buckets[key], field, bucketAgg),
		})
	}

	if agg == AggCumSum {
		points = Cumulative(points)
	}

	return points
}

func periodKey(t time.Time, period Period) string {
	switch period {
	case PeriodWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case PeriodMonth:
		return t.Format("2006-01")
	case PeriodYear:
		return t.Format("2006")
	default:
		return t.Format(dateFormat)
	}
}

// GroupByDimension buckets records by a categorical field for proportion and
// treemap charts, preserving first-seen order. Records missing the field are
// skipped.
func GroupByDimension(records []Record, field string, valueField string, agg Aggregation) []SeriesPoint {
	if agg == AggCumSum {
		agg = AggSum
	}

	buckets := make(map[string][]Record)
	order := make([]string, 0)
	for _, r := range records {
		v, ok := r.Field(field)
		if !ok {
			continue
		}

		key := String(v)
		if _, exists := buckets[key]; !exists {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], r)
	}

	points := make([]SeriesPoint, 0, len(order))
	for _, key := range order {
		points = append(points, SeriesPoint{
			Key:   key,
			Value: Aggregate(buckets[key], valueField, agg),
		})
	}

	return points
}

// Cumulative converts per-bucket values into a running total. Fresh slice,
// input untouched.
func Cumulative(points []SeriesPoint) []SeriesPoint {
	out := make([]SeriesPoint, len(points))
	var total float64
	for i, p := range points {
		total += p.Value
		out[i] = SeriesPoint{Key: p.Key, Value: total}
	}

	return out
}
