package lifelog

import (
	"strings"
	"time"
)

// Operator is a comparison operator in a metric filter condition.
type Operator string

const (
	OpEq  Operator = "="
	OpEq2 Operator = "=="

	OpNotEq  Operator = "!="
	OpNotEq2 Operator = "!=="

	OpGreater     Operator = ">"
	OpGreaterOrEq Operator = ">="
	OpLess        Operator = "<"
	OpLessOrEq    Operator = "<="
)

// FilterCondition is one declarative condition against a record field.
// When Value is a slice, equality means membership.
type FilterCondition struct {
	Field    string      `json:"field"`
	Operator Operator    `json:"operator"`
	Value    interface{} `json:"value"`
}

// Match evaluates the condition against a record. A missing field fails the
// condition regardless of operator; an operand that does not parse as a
// number fails the ordered comparisons. Match never panics on bad input.
func (c FilterCondition) Match(r Record) bool {
	v, ok := r.Field(c.Field)
	if !ok {
		return false
	}

	switch c.Operator {
	case OpEq, OpEq2:
		return looseEqual(v, c.Value)
	case OpNotEq, OpNotEq2:
		return !looseEqual(v, c.Value)
	case OpGreater, OpGreaterOrEq, OpLess, OpLessOrEq:
		left, lok := Number(v)
		right, rok := Number(c.Value)
		if !lok || !rok {
			return false
		}

		switch c.Operator {
		case OpGreater:
			return left > right
		case OpGreaterOrEq:
			return left >= right
		case OpLess:
			return left < right
		default:
			return left <= right
		}
	}

	return false
}

// looseEqual compares two values the way the dashboards do: numerically when
// both sides coerce to numbers, as trimmed strings otherwise. A slice on
// either side means membership.
func looseEqual(a, b interface{}) bool {
	if list, ok := sliceOfValues(b); ok {
		for _, item := range list {
			if looseEqual(a, item) {
				return true
			}
		}
		return false
	}

	if list, ok := sliceOfValues(a); ok {
		for _, item := range list {
			if looseEqual(item, b) {
				return true
			}
		}
		return false
	}

	an, aok := Number(a)
	bn, bok := Number(b)
	if aok && bok {
		return an == bn
	}

	return strings.TrimSpace(String(a)) == strings.TrimSpace(String(b))
}

func sliceOfValues(v interface{}) ([]interface{}, bool) {
	switch list := v.(type) {
	case []interface{}:
		return list, true
	case []string:
		out := make([]interface{}, len(list))
		for i := range list {
			out[i] = list[i]
		}
		return out, true
	case []float64:
		out := make([]interface{}, len(list))
		for i := range list {
			out[i] = list[i]
		}
		return out, true
	case []time.Time:
		out := make([]interface{}, len(list))
		for i := range list {
			out[i] = list[i]
		}
		return out, true
	}

	return nil, false
}
