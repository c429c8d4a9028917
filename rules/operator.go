package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyOperator evaluates actual <op> expected for the operators the
// governance rule language supports: >, >=, <, <=, ==, !=, contains,
// overlaps_with.
func ApplyOperator(op string, actual, expected interface{}) (bool, error) {
	switch op {
	case ">", ">=", "<", "<=":
		a, aok := toFloat(actual)
		e, eok := toFloat(expected)
		if !aok || !eok {
			return false, fmt.Errorf("rules: operator %q requires numeric operands", op)
		}
		switch op {
		case ">":
			return a > e, nil
		case ">=":
			return a >= e, nil
		case "<":
			return a < e, nil
		default:
			return a <= e, nil
		}
	case "==":
		return equalValues(actual, expected), nil
	case "!=":
		return !equalValues(actual, expected), nil
	case "contains":
		as := toString(actual)
		es := toString(expected)
		return strings.Contains(strings.ToLower(as), strings.ToLower(es)), nil
	case "overlaps_with":
		// Truthiness of the field itself; the rule's configured value is
		// not consulted (a rule that exists only to gate on a bool field
		// being true, regardless of what it's nominally compared against).
		return toBool(actual), nil
	default:
		return false, fmt.Errorf("rules: unknown operator %q", op)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		lower := strings.ToLower(strings.TrimSpace(b))
		return lower == "true" || lower == "yes" || lower == "1"
	case float64:
		return b != 0
	case nil:
		return false
	default:
		return true
	}
}

func equalValues(a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return strings.EqualFold(toString(a), toString(b))
}
