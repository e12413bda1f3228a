package aggregate

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Layouts carrying their own offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	"Mon Jan 2 2006 15:04:05 GMT-0700",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05Z07:00",
}

// Layouts without an offset; parsed in the shop's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateTime,
	"2006-01-02 15:04",
	time.DateOnly,
	"1/2/2006, 3:04:05 PM",
	"1/2/2006 3:04:05 PM",
	"1/2/2006, 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"January 2, 2006 at 3:04:05 PM",
	"January 2, 2006 3:04 PM",
	"January 2, 2006",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"02 Jan 2006",
}

// epochSecondsLimit separates epoch seconds from epoch milliseconds.
const epochSecondsLimit = 1e11

type timeConverter interface{ Time() time.Time }
type asTimeConverter interface{ AsTime() time.Time }
type toTimeConverter interface{ ToTime() time.Time }

// ToInstant coerces any date-like value into an instant. Strings without an
// offset are read in loc. The second result is false when nothing usable was
// found; callers decide the fallback.
func ToInstant(v any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	if isNil(v) {
		return time.Time{}, false
	}

	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return val, !val.IsZero()
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return *val, !val.IsZero()
	case timeConverter:
		t := val.Time()
		return t, !t.IsZero()
	case asTimeConverter:
		t := val.AsTime()
		return t, !t.IsZero()
	case toTimeConverter:
		t := val.ToTime()
		return t, !t.IsZero()
	case string:
		return parseTimeString(val, loc)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpoch(f)
	}

	if m, ok := asMap(v); ok {
		return fromTimestampMap(m)
	}
	if f, ok := asNumber(v); ok {
		return fromEpoch(f)
	}
	return time.Time{}, false
}

func parseTimeString(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// Browser Date strings end with a zone name in parentheses.
	if idx := strings.Index(s, " ("); idx > 0 {
		s = s[:idx]
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(f)
	}
	return time.Time{}, false
}

// fromTimestampMap reads serialized platform timestamps such as
// {"seconds": 1700000000, "nanoseconds": 0} or {"_seconds": ..., "_nanoseconds": ...}.
func fromTimestampMap(m map[string]any) (time.Time, bool) {
	secRaw, ok := firstValue(m, "seconds", "_seconds")
	if !ok {
		return time.Time{}, false
	}
	sec, ok := asNumber(secRaw)
	if !ok {
		return time.Time{}, false
	}
	var nsec float64
	if nsRaw, ok := firstValue(m, "nanoseconds", "_nanoseconds", "nanos"); ok {
		nsec, _ = asNumber(nsRaw)
	}
	return time.Unix(int64(sec), int64(nsec)), true
}

func fromEpoch(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return time.Time{}, false
	}
	if f < epochSecondsLimit {
		return time.Unix(int64(f), 0), true
	}
	return time.UnixMilli(int64(f)), true
}

// isNil also catches typed nils such as a nil *time.Time stored in an any.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// firstValue returns the first non-nil value stored under any of keys. Typed
// nils count as absent.
func firstValue(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && !isNil(v) {
			return v, true
		}
	}
	return nil, false
}

func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		// []byte is data, not a list.
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

type hexer interface{ Hex() string }

func asString(v any) string {
	if isNil(v) {
		return ""
	}
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case hexer:
		return val.Hex()
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	case bool:
		return strconv.FormatBool(val)
	}
	if f, ok := asNumber(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// asNumber accepts any numeric kind or a numeric string. NaN and Inf are rejected.
func asNumber(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int8:
		f = float64(val)
	case int16:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case uint:
		f = float64(val)
	case uint8:
		f = float64(val)
	case uint16:
		f = float64(val)
	case uint32:
		f = float64(val)
	case uint64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		cleaned := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(val))
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func numberOr(v any, fallback float64) float64 {
	if f, ok := asNumber(v); ok {
		return f
	}
	return fallback
}
