package recordschema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"racing-api/internal/domain"
)

// coerce converts a weakly-typed input value into the Go type used for f.
// nil handling is left to the caller.
func coerce(f domain.FieldDescriptor, v any) (any, error) {
	switch f.Type {
	case domain.FieldInteger:
		return toInt64(v)
	case domain.FieldFloat:
		return toFloat64(v)
	case domain.FieldString:
		return toString(v)
	default:
		return nil, fmt.Errorf("unsupported field type %q", f.Type)
	}
}

// signedInt widens any Go integer kind to int64. ok is false for
// non-integers and for unsigned values above math.MaxInt64.
func signedInt(v any) (n int64, ok bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int16:
		return int64(x), true
	case int8:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint:
		return int64(x), uint64(x) <= math.MaxInt64
	case uint64:
		return int64(x), x <= math.MaxInt64
	default:
		return 0, false
	}
}

func toInt64(v any) (int64, error) {
	if n, ok := signedInt(v); ok {
		return n, nil
	}
	switch x := v.(type) {
	case uint64, uint:
		return 0, fmt.Errorf("%v is out of integer range", x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", x.String())
		}
		return integralFloat(f)
	case float64:
		return integralFloat(x)
	case float32:
		return integralFloat(float64(x))
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", x)
		}
		return integralFloat(f)
	case []byte:
		return toInt64(string(x))
	default:
		return 0, fmt.Errorf("expected integer, got %s", kindOf(v))
	}
}

func integralFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%v is out of integer range", f)
	}
	return int64(f), nil
}

func toFloat64(v any) (float64, error) {
	if n, ok := signedInt(v); ok {
		return float64(n), nil
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case uint:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", x.String())
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", x)
		}
		f = n
	case []byte:
		return toFloat64(string(x))
	default:
		return 0, fmt.Errorf("expected number, got %s", kindOf(v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not a finite number", f)
	}
	return f, nil
}

func toString(v any) (string, error) {
	if n, ok := signedInt(v); ok {
		return strconv.FormatInt(n, 10), nil
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case json.Number:
		return x.String(), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case time.Time:
		return x.Format(time.RFC3339), nil
	default:
		return "", fmt.Errorf("expected string, got %s", kindOf(v))
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
