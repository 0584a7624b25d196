package diff

import (
	"encoding/json"
	"reflect"
	"time"
)

// isoLayouts covers the ISO-8601 date-time shapes the fetcher and file
// loader can produce: RFC 3339 with and without fractional seconds, and a
// bare date.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// parseInstant tries each ISO-8601 layout in turn, reporting success only
// if one matches the full string.
func parseInstant(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// equalValues implements the value-equality rules: nulls equal nulls;
// ISO-8601 date-times equal when they represent the same instant; other
// scalars by strict equality; structured values (JSON columns) by
// structural equality after canonicalizing key order.
func equalValues(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	as, aIsString := a.(string)
	bs, bIsString := b.(string)
	if aIsString && bIsString {
		at, aIsTime := parseInstant(as)
		bt, bIsTime := parseInstant(bs)
		if aIsTime && bIsTime {
			return at.Equal(bt)
		}
		return as == bs
	}

	if isStructured(a) || isStructured(b) {
		return canonicalJSON(a) == canonicalJSON(b)
	}

	if af, aIsNum := toFloat(a); aIsNum {
		if bf, bIsNum := toFloat(b); bIsNum {
			return af == bf
		}
	}

	return reflect.DeepEqual(a, b)
}

func isStructured(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

// canonicalJSON re-marshals v; encoding/json always sorts map keys
// alphabetically, giving a stable key order for comparison — array element
// order is preserved, as intended.
func canonicalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
