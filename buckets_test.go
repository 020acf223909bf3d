package lifelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekdayIndex(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name     string
		date     time.Time
		expected int
	}{
		{
			name:     "monday is first",
			date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), // Monday
			expected: 0,
		},
		{
			name:     "sunday is last",
			date:     time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), // Sunday
			expected: 6,
		},
		{
			name:     "wednesday",
			date:     time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			expected: 2,
		},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, WeekdayIndex(tc.date))
		})
	}
}

func TestDayPartOf(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name            string
		clock           time.Time
		midnightUnknown bool
		expected        DayPart
	}{
		{
			name:     "morning",
			clock:    time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC),
			expected: DayPartMorning,
		},
		{
			name:     "late morning",
			clock:    time.Date(2024, 1, 1, 11, 59, 0, 0, time.UTC),
			expected: DayPartMorning,
		},
		{
			name:     "afternoon",
			clock:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			expected: DayPartAfternoon,
		},
		{
			name:     "evening",
			clock:    time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC),
			expected: DayPartEvening,
		},
		{
			name:     "late evening",
			clock:    time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC),
			expected: DayPartEvening,
		},
		{
			name:     "night",
			clock:    time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC),
			expected: DayPartNight,
		},
		{
			name:     "midnight defaults to night",
			clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: DayPartNight,
		},
		{
			name:            "midnight flagged as unknown",
			clock:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			midnightUnknown: true,
			expected:        DayPartUnknown,
		},
		{
			name:            "one second past midnight stays night",
			clock:           time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC),
			midnightUnknown: true,
			expected:        DayPartNight,
		},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, DayPartOf(tc.clock, tc.midnightUnknown))
		})
	}
}

func TestNewHeatmapSpec_AxisCollisionFallsBack(t *testing.T) {
	t.Parallel()

	spec := NewHeatmapSpec("date", "amount", AggSum, AxisWeekday, AxisWeekday)
	require.Equal(t, AxisWeekday, spec.RowAxis)
	require.Equal(t, AxisDayPart, spec.ColumnAxis)

	spec = NewHeatmapSpec("date", "amount", AggSum, Axis("bogus"), AxisDayPart)
	require.Equal(t, AxisWeekday, spec.RowAxis)
	require.Equal(t, AxisDayPart, spec.ColumnAxis)
}

func TestBuildHeatmap(t *testing.T) {
	t.Parallel()

	records := []Record{
		{"played_at": "2024-01-01 08:30:00", "duration": "10"}, // Monday morning
		{"played_at": "2024-01-01 09:45:00", "duration": "20"}, // Monday morning
		{"played_at": "2024-01-07 19:00:00", "duration": "5"},  // Sunday evening
		{"played_at": "garbage", "duration": "99"},
		{"duration": "50"},
	}

	spec := NewHeatmapSpec("played_at", "duration", AggSum, AxisWeekday, AxisDayPart)
	h := BuildHeatmap(records, spec)

	require.Equal(t, Weekdays[:], h.Rows())
	require.Equal(t, []string{"Morning", "Afternoon", "Evening", "Night"}, h.Columns())

	require.Equal(t, 30.0, h.Value(0, 0)) // Monday × Morning
	require.Equal(t, 5.0, h.Value(6, 2))  // Sunday × Evening
	require.Equal(t, 0.0, h.Value(3, 3))
	require.Equal(t, 0.0, h.Value(-1, 0))
	require.Equal(t, 0.0, h.Value(0, 99))
}

func TestBuildHeatmap_SwapChangesIterationOnly(t *testing.T) {
	t.Parallel()

	records := []Record{
		{"at": "2024-01-01 08:30:00", "n": 1.0},
		{"at": "2024-01-02 13:00:00", "n": 2.0},
	}

	h := BuildHeatmap(records, NewHeatmapSpec("at", "n", AggSum, AxisWeekday, AxisDayPart))
	before := h.Value(1, 1) // Tuesday × Afternoon

	h.Swap()

	require.Equal(t, []string{"Morning", "Afternoon", "Evening", "Night"}, h.Rows())
	require.Equal(t, Weekdays[:], h.Columns())
	require.Equal(t, before, h.Value(1, 1)) // Afternoon × Tuesday, same cell
	require.Equal(t, 1.0, h.Value(0, 0))    // Morning × Monday
}

func TestBuildHeatmap_MidnightUnknownColumn(t *testing.T) {
	t.Parallel()

	records := []Record{
		{"finished_at": "2024-01-01", "pages": "100"},         // date-only, exact midnight
		{"finished_at": "2024-01-01 02:00:00", "pages": "40"}, // real night read
	}

	spec := NewHeatmapSpec("finished_at", "pages", AggSum, AxisWeekday, AxisDayPart)
	spec.MidnightUnknown = true

	h := BuildHeatmap(records, spec)
	require.Equal(t, []string{"Morning", "Afternoon", "Evening", "Night", "Unknown"}, h.Columns())
	require.Equal(t, 100.0, h.Value(0, 4)) // Monday × Unknown
	require.Equal(t, 40.0, h.Value(0, 3))  // Monday × Night

	h = BuildHeatmap(records, NewHeatmapSpec("finished_at", "pages", AggSum, AxisWeekday, AxisDayPart))
	require.Equal(t, []string{"Morning", "Afternoon", "Evening", "Night"}, h.Columns())
	require.Equal(t, 140.0, h.Value(0, 3)) // both land in Night without the flag
}

func TestBuildHeatmap_CountAndCumSum(t *testing.T) {
	t.Parallel()

	records := []Record{
		{"at": "2024-01-01 08:00:00", "n": "1"},
		{"at": "2024-01-01 09:00:00", "n": "2"},
	}

	h := BuildHeatmap(records, NewHeatmapSpec("at", "", AggCount, AxisWeekday, AxisDayPart))
	require.Equal(t, 2.0, h.Value(0, 0))

	// cumsum has no ordering inside a 2-D grid, so it sums.
	h = BuildHeatmap(records, NewHeatmapSpec("at", "n", AggCumSum, AxisWeekday, AxisDayPart))
	require.Equal(t, 3.0, h.Value(0, 0))
}

func TestGroupByPeriod(t *testing.T) {
	t.Parallel()

	records := []Record{
		{"date": "2024-01-05", "amount": "10"},
		{"date": "2024-01-05", "amount": "5"},
		{"date": "2024-02-01", "amount": "20"},
		{"date": "2023-12-31", "amount": "1"},
		{"date": "bad", "amount": "99"},
	}

	tt := []struct {
		name     string
		period   Period
		agg      Aggregation
		expected []SeriesPoint
	}{
		{
			name:   "daily sums in chronological order",
			period: PeriodDay,
			agg:    AggSum,
			expected: []SeriesPoint{
				{Key: "2023-12-31", Value: 1},
				{Key: "2024-01-05", Value: 15},
				{Key: "2024-02-01", Value: 20},
			},
		},
		{
			name:   "monthly buckets",
			period: PeriodMonth,
			agg:    AggSum,
			expected: []SeriesPoint{
				{Key: "2023-12", Value: 1},
				{Key: "2024-01", Value: 15},
				{Key: "2024-02", Value: 20},
			},
		},
		{
			name:   "yearly counts",
			period: PeriodYear,
			agg:    AggCount,
			expected: []SeriesPoint{
				{Key: "2023", Value: 1},
				{Key: "2024", Value: 3},
			},
		},
		{
			name:   "cumsum is a running total over buckets",
			period: PeriodMonth,
			agg:    AggCumSum,
			expected: []SeriesPoint{
				{Key: "2023-12", Value: 1},
				{Key: "2024-01", Value: 16},
				{Key: "2024-02", Value: 36},
			},
		},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			points := GroupByPeriod(records, "date", tc.period, "amount", tc.agg)
			require.Equal(t, tc.expected, points)
		})
	}
}

func TestGroupByPeriod_WeekKeys(t *testing.T) {
	t.Parallel()

	records := []Record{
		{"date": "2024-01-01", "n": "1"}, // ISO week 2024-W01
		{"date": "2024-01-08", "n": "1"}, // ISO week 2024-W02
	}

	points := GroupByPeriod(records, "date", PeriodWeek, "n", AggSum)
	require.Equal(t, []SeriesPoint{
		{Key: "2024-W01", Value: 1},
		{Key: "2024-W02", Value: 1},
	}, points)
}

func TestGroupByDimension(t *testing.T) {
	t.Parallel()

	records := []Record{
		{"genre": "rock", "duration": "10"},
		{"genre": "jazz", "duration": "20"},
		{"genre": "rock", "duration": "30"},
		{"no_genre": "x"},
	}

	points := GroupByDimension(records, "genre", "duration", AggSum)
	require.Equal(t, []SeriesPoint{
		{Key: "rock", Value: 40},
		{Key: "jazz", Value: 20},
	}, points)
}

func TestCumulative(t *testing.T) {
	t.Parallel()

	in := []SeriesPoint{
		{Key: "a", Value: 1},
		{Key: "b", Value: 2},
		{Key: "c", Value: 3},
	}

	out := Cumulative(in)
	require.Equal(t, []SeriesPoint{
		{Key: "a", Value: 1},
		{Key: "b", Value: 3},
		{Key: "c", Value: 6},
	}, out)
	require.Equal(t, 2.0, in[1].Value, "input stays untouched")
}
