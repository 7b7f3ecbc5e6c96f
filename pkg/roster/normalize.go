package roster

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// NullSentinel is the normalized form of a missing value. It can't collide with any stored string.
const NullSentinel = "\x00null"

// Normalize turns a cell or filter value into a comparable string. Both sides of a comparison must be
// normalized against the same column.
func Normalize(column ColumnDescriptor, v any) string {
	v = deref(v)
	if column.Transport {
		if UsesShuttle(v) {
			return "Yes"
		}
		return "No"
	}
	switch x := v.(type) {
	case nil:
		return NullSentinel
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case time.Time:
		if column.ValueType == TypeDate {
			return x.Format(time.DateOnly)
		}
		return x.UTC().Format(time.RFC3339)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return x.String()
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// stringify is Normalize with missing values rendered as the empty string.
func stringify(column ColumnDescriptor, v any) string {
	s := Normalize(column, v)
	if s == NullSentinel {
		return ""
	}
	return s
}

func isEmpty(v any) bool {
	switch x := deref(v).(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

func truthy(v any) bool {
	switch x := deref(v).(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		s := strings.TrimSpace(x)
		return s != "" && !strings.EqualFold(s, "no") && !strings.EqualFold(s, "false")
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	return true
}

// toFloat converts numeric values. Strings are parsed as well since filter values often arrive as
// query strings.
func toFloat(v any) (float64, bool) {
	switch x := deref(v).(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

func isNumber(v any) bool {
	if _, ok := v.(string); ok {
		return false
	}
	_, ok := toFloat(v)
	return ok
}

func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}
