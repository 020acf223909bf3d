package lifelog

import (
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// FilterType tags the kind of a user-facing filter control.
type FilterType string

const (
	FilterDateRange    FilterType = "daterange"
	FilterMultiSelect  FilterType = "multiselect"
	FilterNumberRange  FilterType = "numberrange"
	FilterSingleSelect FilterType = "singleselect"
	FilterHierarchical FilterType = "hierarchical"
)

// SelectionMode controls how many values a hierarchical filter level accepts.
type SelectionMode string

const (
	SelectionSingle SelectionMode = "single"
	SelectionMulti  SelectionMode = "multi"
)

// FilterSpec declares one filter control: which field it constrains and
// which named record collections it applies to. Each kind is its own type;
// the engine dispatches exhaustively instead of inspecting state shapes.
type FilterSpec interface {
	FilterKey() string
	FilterType() FilterType
	AppliesTo(source string) bool
}

type filterBase struct {
	Key         string   `json:"key"`
	DataField   string   `json:"dataField"`
	DataSources []string `json:"dataSources"`
}

func (b filterBase) FilterKey() string { return b.Key }

func (b filterBase) AppliesTo(source string) bool {
	if len(b.DataSources) == 0 {
		return true
	}

	return lo.Contains(b.DataSources, source)
}

// DateRangeFilter keeps records whose parsed date field falls inside a
// two-ended inclusive range. Records with an unparsable date are dropped.
type DateRangeFilter struct {
	filterBase
}

func (DateRangeFilter) FilterType() FilterType { return FilterDateRange }

// MultiSelectFilter keeps records whose field value is among the selected
// values. An empty selection means no filter, not "exclude all".
type MultiSelectFilter struct {
	filterBase
}

func (MultiSelectFilter) FilterType() FilterType { return FilterMultiSelect }

// NumberRangeFilter keeps records whose parsed numeric field lies in the
// inclusive [min, max] range. A nil bound is unbounded on that side.
type NumberRangeFilter struct {
	filterBase
}

func (NumberRangeFilter) FilterType() FilterType { return FilterNumberRange }

// SingleSelectFilter keeps records matching one selected value exactly.
type SingleSelectFilter struct {
	filterBase
}

func (SingleSelectFilter) FilterType() FilterType { return FilterSingleSelect }

// HierarchicalFilter constrains parent/child category fields. LevelFields
// name the record field per level, outermost first. Levels are tracked
// independently: selecting a parent never implies its children.
type HierarchicalFilter struct {
	filterBase

	LevelFields []string      `json:"levelFields"`
	Mode        SelectionMode `json:"mode"`
}

func (HierarchicalFilter) FilterType() FilterType { return FilterHierarchical }

// NewDateRangeFilter builds a daterange spec.
func NewDateRangeFilter(key, dataField string, sources ...string) DateRangeFilter {
	return DateRangeFilter{filterBase{Key: key, DataField: dataField, DataSources: sources}}
}

// NewMultiSelectFilter builds a multiselect spec.
func NewMultiSelectFilter(key, dataField string, sources ...string) MultiSelectFilter {
	return MultiSelectFilter{filterBase{Key: key, DataField: dataField, DataSources: sources}}
}

// NewNumberRangeFilter builds a numberrange spec.
func NewNumberRangeFilter(key, dataField string, sources ...string) NumberRangeFilter {
	return NumberRangeFilter{filterBase{Key: key, DataField: dataField, DataSources: sources}}
}

// NewSingleSelectFilter builds a singleselect spec.
func NewSingleSelectFilter(key, dataField string, sources ...string) SingleSelectFilter {
	return SingleSelectFilter{filterBase{Key: key, DataField: dataField, DataSources: sources}}
}

// NewHierarchicalFilter builds a hierarchical spec over level fields.
func NewHierarchicalFilter(key string, mode SelectionMode, levelFields []string, sources ...string) HierarchicalFilter {
	return HierarchicalFilter{
		filterBase:  filterBase{Key: key, DataSources: sources},
		LevelFields: levelFields,
		Mode:        mode,
	}
}

// FilterState is the current selection of one filter control. The concrete
// type must correspond to the spec kind; a mismatch is logged and the
// filter passes everything through.
type FilterState interface {
	filterState()
}

// DateRange selects an inclusive [Start, End] window. A zero bound is
// unbounded on that side.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (DateRange) filterState() {}

// MultiSelection is the set of selected values. Empty means unfiltered.
type MultiSelection []string

func (MultiSelection) filterState() {}

// NumberRange selects an inclusive [Min, Max] window. A nil bound is
// unbounded on that side.
type NumberRange struct {
	Min *float64
	Max *float64
}

func (NumberRange) filterState() {}

// SingleSelection is one selected value. Empty means unfiltered.
type SingleSelection string

func (SingleSelection) filterState() {}

// LevelSelection is one selected value at one hierarchy level.
type LevelSelection struct {
	Level int
	Value string
}

// HierarchicalSelection is the selected values across hierarchy levels.
type HierarchicalSelection []LevelSelection

func (HierarchicalSelection) filterState() {}

// State maps filter keys to their current selection. Pages start with an
// empty map and replace entries from the filter-change callback.
type State map[string]FilterState

// Engine applies declarative filter specs and the current state to named
// record collections. It sits upstream of all per-metric aggregation.
type Engine struct {
	specs  []FilterSpec
	logger *zap.Logger
}

// NewEngine builds a filter engine over the given specs.
func NewEngine(specs []FilterSpec, opts ...Option) *Engine {
	o := applyOptions(opts)

	return &Engine{
		specs:  specs,
		logger: o.logger,
	}
}

// Apply reduces each named collection by every spec that targets it and has
// an active selection. A collection no spec narrows comes back by reference;
// every narrowed collection is freshly allocated from the canonical source.
func (e *Engine) Apply(sources map[string][]Record, state State) map[string][]Record {
	out := make(map[string][]Record, len(sources))

	for name, records := range sources {
		filtered := records
		for _, spec := range e.specs {
			if !spec.AppliesTo(name) {
				continue
			}

			selection, ok := state[spec.FilterKey()]
			if !ok || selection == nil {
				continue
			}

			filtered = e.applyOne(filtered, spec, selection)
		}

		out[name] = filtered
	}

	return out
}

// ApplyToSource filters a single collection, for pages with one data set.
func (e *Engine) ApplyToSource(source string, records []Record, state State) []Record {
	out := e.Apply(map[string][]Record{source: records}, state)

	return out[source]
}

func (e *Engine) applyOne(records []Record, spec FilterSpec, state FilterState) []Record {
	switch s := spec.(type) {
	case DateRangeFilter:
		if sel, ok := state.(DateRange); ok {
			return filterDateRange(records, s.DataField, sel)
		}
	case MultiSelectFilter:
		if sel, ok := state.(MultiSelection); ok {
			return filterMultiSelect(records, s.DataField, sel)
		}
	case NumberRangeFilter:
		if sel, ok := state.(NumberRange); ok {
			return filterNumberRange(records, s.DataField, sel)
		}
	case SingleSelectFilter:
		if sel, ok := state.(SingleSelection); ok {
			return filterSingleSelect(records, s.DataField, sel)
		}
	case HierarchicalFilter:
		if sel, ok := state.(HierarchicalSelection); ok {
			return filterHierarchical(records, s, sel)
		}
	}

	e.logger.Warn("filter state does not match spec kind, passing records through",
		zap.String("key", spec.FilterKey()),
		zap.String("type", string(spec.FilterType())),
	)

	return records
}

func filterDateRange(records []Record, field string, sel DateRange) []Record {
	if sel.Start.IsZero() && sel.End.IsZero() {
		return records
	}

	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		v, ok := r.Field(field)
		if !ok {
			continue
		}
		t, ok := Time(v)
		if !ok {
			continue
		}
		if !sel.Start.IsZero() && t.Before(sel.Start) {
			continue
		}
		if !sel.End.IsZero() && t.After(sel.End) {
			continue
		}
		filtered = append(filtered, r)
	}

	return filtered
}

func filterMultiSelect(records []Record, field string, sel MultiSelection) []Record {
	if len(sel) == 0 {
		return records
	}

	allowed := lo.SliceToMap([]string(sel), func(v string) (string, struct{}) {
		return v, struct{}{}
	})

	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		v, ok := r.Field(field)
		if !ok {
			continue
		}

		if list, isList := v.([]string); isList {
			for _, item := range list {
				if _, hit := allowed[item]; hit {
					filtered = append(filtered, r)
					break
				}
			}
			continue
		}

		if _, hit := allowed[String(v)]; hit {
			filtered = append(filtered, r)
		}
	}

	return filtered
}

func filterNumberRange(records []Record, field string, sel NumberRange) []Record {
	if sel.Min == nil && sel.Max == nil {
		return records
	}

	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		v, ok := r.Field(field)
		if !ok {
			continue
		}
		n, ok := Number(v)
		if !ok {
			continue
		}
		if sel.Min != nil && n < *sel.Min {
			continue
		}
		if sel.Max != nil && n > *sel.Max {
			continue
		}
		filtered = append(filtered, r)
	}

	return filtered
}

func filterSingleSelect(records []Record, field string, sel SingleSelection) []Record {
	if sel == "" {
		return records
	}

	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		v, ok := r.Field(field)
		if !ok {
			continue
		}
		if looseEqual(v, string(sel)) {
			filtered = append(filtered, r)
		}
	}

	return filtered
}

func filterHierarchical(records []Record, spec HierarchicalFilter, sel HierarchicalSelection) []Record {
	if len(sel) == 0 {
		return records
	}

	// Group selections per level; each level constrains its own field.
	perLevel := make(map[int][]string)
	for _, s := range sel {
		if s.Level < 0 || s.Level >= len(spec.LevelFields) {
			continue
		}
		perLevel[s.Level] = append(perLevel[s.Level], s.Value)
	}
	if len(perLevel) == 0 {
		return records
	}

	if spec.Mode == SelectionSingle {
		for level, values := range perLevel {
			perLevel[level] = values[:1]
		}
	}

	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		pass := true
		for level, values := range perLevel {
			v, ok := r.Field(spec.LevelFields[level])
			if !ok || !lo.Contains(values, String(v)) {
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
