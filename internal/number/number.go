package number

import (
	"encoding/json"
	"math"
)

// ToFloat64 converts supported numeric values to float64.
func ToFloat64(value any) (float64, bool) {
	switch current := value.(type) {
	case int:
		return float64(current), true
	case int8:
		return float64(current), true
	case int16:
		return float64(current), true
	case int32:
		return float64(current), true
	case int64:
		return float64(current), true
	case uint:
		return float64(current), true
	case uint8:
		return float64(current), true
	case uint16:
		return float64(current), true
	case uint32:
		return float64(current), true
	case uint64:
		return float64(current), true
	case float32:
		return float64(current), true
	case float64:
		return current, true
	case json.Number:
		parsed, err := current.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// ToInt64 converts integer-typed values, and json.Number values holding an
// integer, into int64. Unsigned values above math.MaxInt64 are rejected.
func ToInt64(value any) (int64, bool) {
	switch current := value.(type) {
	case int:
		return int64(current), true
	case int8:
		return int64(current), true
	case int16:
		return int64(current), true
	case int32:
		return int64(current), true
	case int64:
		return current, true
	case uint:
		return int64(current), uint64(current) <= math.MaxInt64
	case uint8:
		return int64(current), true
	case uint16:
		return int64(current), true
	case uint32:
		return int64(current), true
	case uint64:
		return int64(current), current <= math.MaxInt64
	case json.Number:
		parsed, err := current.Int64()
		return parsed, err == nil
	default:
		return 0, false
	}
}

// IsNumber reports whether value is one of the supported numeric types.
func IsNumber(value any) bool {
	_, ok := ToFloat64(value)
	return ok
}

// Compare orders two numeric values, returning -1, 0 or +1. Integers are
// compared exactly; anything else is compared as float64. ok is false when
// either value is not a number or either is NaN.
func Compare(a, b any) (cmp int, ok bool) {
	if x, okA := ToInt64(a); okA {
		if y, okB := ToInt64(b); okB {
			switch {
			case x < y:
				return -1, true
			case x > y:
				return 1, true
			}
			return 0, true
		}
	}

	x, okA := ToFloat64(a)
	y, okB := ToFloat64(b)
	if !okA || !okB || math.IsNaN(x) || math.IsNaN(y) {
		return 0, false
	}
	switch {
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	}
	return 0, true
}

// Equal reports whether a and b are numbers of equal value, regardless of
// their Go representation.
func Equal(a, b any) bool {
	cmp, ok := Compare(a, b)
	return ok && cmp == 0
}
