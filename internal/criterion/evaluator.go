// Package criterion evaluates single weighted comparison rules against client
// attribute values. It is the leaf of the matching pipeline: pure, stateless,
// and fail-closed on type mismatches.
package criterion

import (
	"log"
	"strings"

	"OpportunityScout/internal/model"
)

// Evaluate reports whether actual satisfies the criterion. Operators are
// validated at construction, so an unknown operator reaching this switch is a
// programming error and fails closed with a warning rather than panicking.
// Numeric operators fail closed when actual is not numeric.
func Evaluate(c model.MatchCriterion, actual any) bool {
	switch c.Operator {
	case model.OpGt, model.OpLt, model.OpGte, model.OpLte:
		return evaluateNumeric(c, actual)
	case model.OpEq:
		return evaluateEq(c, actual)
	case model.OpContains:
		return evaluateContains(c, actual)
	case model.OpIn:
		return evaluateIn(c, actual)
	}
	log.Printf("[WARN] criterion %q: unknown operator %q, treating as unsatisfied", c.Field, c.Operator)
	return false
}

func evaluateNumeric(c model.MatchCriterion, actual any) bool {
	av, ok := toFloat(actual)
	if !ok {
		log.Printf("[WARN] criterion %q: operator %s expects numeric value, got %T", c.Field, c.Operator, actual)
		return false
	}
	ev, ok := toFloat(c.Value)
	if !ok {
		log.Printf("[WARN] criterion %q: operator %s has non-numeric expected value %T", c.Field, c.Operator, c.Value)
		return false
	}
	switch c.Operator {
	case model.OpGt:
		return av > ev
	case model.OpLt:
		return av < ev
	case model.OpGte:
		return av >= ev
	case model.OpLte:
		return av <= ev
	}
	return false
}

func evaluateEq(c model.MatchCriterion, actual any) bool {
	if av, ok := toFloat(actual); ok {
		if ev, ok := toFloat(c.Value); ok {
			return av == ev
		}
		return false
	}
	if as, ok := actual.(string); ok {
		if es, ok := c.Value.(string); ok {
			return as == es // case-sensitive
		}
		return false
	}
	if ab, ok := actual.(bool); ok {
		if eb, ok := c.Value.(bool); ok {
			return ab == eb
		}
		return false
	}
	log.Printf("[WARN] criterion %q: eq unsupported for type %T", c.Field, actual)
	return false
}

// evaluateContains: true when actual (a string or a sequence) contains the
// expected value.
func evaluateContains(c model.MatchCriterion, actual any) bool {
	if as, ok := actual.(string); ok {
		if es, ok := c.Value.(string); ok {
			return strings.Contains(as, es)
		}
		return false
	}
	seq, ok := toSequence(actual)
	if !ok {
		log.Printf("[WARN] criterion %q: contains expects string or sequence, got %T", c.Field, actual)
		return false
	}
	for _, item := range seq {
		if looseEqual(item, c.Value) {
			return true
		}
	}
	return false
}

// evaluateIn: true when actual is a member of the expected sequence.
func evaluateIn(c model.MatchCriterion, actual any) bool {
	seq, ok := toSequence(c.Value)
	if !ok {
		log.Printf("[WARN] criterion %q: in expects a sequence expected value, got %T", c.Field, c.Value)
		return false
	}
	for _, item := range seq {
		if looseEqual(actual, item) {
			return true
		}
	}
	return false
}

// looseEqual compares two values after numeric normalization, falling back to
// string and bool equality.
func looseEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
		return false
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ab == bb
	}
	return false
}

// toFloat normalizes the numeric types that reach us from typed structs and
// decoded JSON.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// toSequence normalizes slice shapes ([]any from decoded JSON, plus the typed
// slices used in fixtures).
func toSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []float64:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []int:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	}
	return nil, false
}
