package lifelog

import "time"

// FieldKind classifies a schema field for ingestion.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindNumber FieldKind = "number"
	KindDate   FieldKind = "date"
	KindBool   FieldKind = "bool"
)

// FieldSpec describes one column of a source: how to coerce it and, for
// numbers, the unit scale to apply while loading. Unit conversion happens
// here, at the ingestion boundary, so the aggregation layer never needs to
// know that a field named "duration" arrives in seconds.
type FieldSpec struct {
	Name  string    `json:"name"`
	Kind  FieldKind `json:"kind"`
	Unit  string    `json:"unit,omitempty"`
	Scale float64   `json:"scale,omitempty"`
}

// DurationMinutes declares a duration column recorded in seconds and
// exposed to the pipeline in minutes.
func DurationMinutes(name string) FieldSpec {
	return FieldSpec{
		Name:  name,
		Kind:  KindNumber,
		Unit:  "minutes",
		Scale: 1.0 / 60,
	}
}

// DateField declares a date column.
func DateField(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: KindDate}
}

// NumberField declares a plain numeric column.
func NumberField(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: KindNumber}
}

// StringField declares a categorical column.
func StringField(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: KindString}
}

// Schema describes the shape of one source's rows.
type Schema struct {
	fields map[string]FieldSpec
	order  []string
}

// NewSchema builds a schema from field specs. Later specs with the same name
// replace earlier ones.
func NewSchema(fields ...FieldSpec) *Schema {
	s := &Schema{
		fields: make(map[string]FieldSpec, len(fields)),
	}
	for _, f := range fields {
		if _, exists := s.fields[f.Name]; !exists {
			s.order = append(s.order, f.Name)
		}
		s.fields[f.Name] = f
	}

	return s
}

// Field looks up the spec for a column name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	if s == nil {
		return FieldSpec{}, false
	}
	f, ok := s.fields[name]

	return f, ok
}

// FieldNames returns the declared column names in declaration order.
func (s *Schema) FieldNames() []string {
	if s == nil {
		return nil
	}

	return s.order
}

// Convert coerces one raw value per the field spec. Failures fall back to
// the trimmed string form so a bad cell degrades instead of erroring: the
// pipeline treats it as unparsable downstream.
func (f FieldSpec) Convert(raw string) interface{} {
	switch f.Kind {
	case KindNumber:
		n, ok := parseFloatPrefix(raw)
		if !ok {
			return raw
		}
		if f.Scale != 0 {
			n *= f.Scale
		}
		return n

	case KindDate:
		t, ok := parseTimeString(raw)
		if !ok {
			return raw
		}
		return t

	case KindBool:
		switch raw {
		case "true", "TRUE", "True", "1", "yes":
			return true
		case "false", "FALSE", "False", "0", "no":
			return false
		}
		return raw
	}

	return raw
}

// Normalize applies the schema to an already-loaded record, returning a
// fresh record. Fields without a spec pass through untouched.
func (s *Schema) Normalize(r Record) Record {
	if s == nil {
		return r
	}

	out := make(Record, len(r))
	for name, v := range r {
		spec, ok := s.fields[name]
		if !ok {
			out[name] = v
			continue
		}

		switch raw := v.(type) {
		case string:
			out[name] = spec.Convert(raw)
		case time.Time:
			out[name] = v
		default:
			if n, ok := Number(v); ok && spec.Kind == KindNumber {
				if spec.Scale != 0 {
					n *= spec.Scale
				}
				out[name] = n
				continue
			}
			out[name] = raw
		}
	}

	return out
}
