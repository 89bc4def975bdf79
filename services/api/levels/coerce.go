package levels

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var truthyStrings = map[string]struct{}{
	"true": {},
	"1":    {},
	"t":    {},
	"y":    {},
	"yes":  {},
}

// CoerceFloat converts loosely typed row values into a float.
// Returns nil for nil, unsupported types and unparsable strings.
func CoerceFloat(v any) *float64 {
	var f float64
	switch val := v.(type) {
	case nil:
		return nil
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
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil
		}
		f = parsed
	case *float64:
		if val == nil {
			return nil
		}
		f = *val
	case *string:
		if val == nil {
			return nil
		}
		return CoerceFloat(*val)
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// CoerceBool reports whether a display/state flag is set.
func CoerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case *bool:
		return val != nil && *val
	case string:
		_, ok := truthyStrings[strings.ToLower(strings.TrimSpace(val))]
		return ok
	case *string:
		return val != nil && CoerceBool(*val)
	case nil:
		return false
	}
	if f := CoerceFloat(v); f != nil {
		return *f == 1
	}
	return false
}

// CoerceMapping returns v as a JSON object, parsing strings when needed.
// Anything that is not an object yields an empty map.
func CoerceMapping(v any) map[string]any {
	switch val := v.(type) {
	case map[string]any:
		if val == nil {
			return map[string]any{}
		}
		return val
	case string:
		return parseObject([]byte(val))
	case *string:
		if val == nil {
			return map[string]any{}
		}
		return parseObject([]byte(*val))
	case []byte:
		return parseObject(val)
	case json.RawMessage:
		return parseObject(val)
	}
	return map[string]any{}
}

func parseObject(raw []byte) map[string]any {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return map[string]any{}
	}
	if obj, ok := parsed.(map[string]any); ok && obj != nil {
		return obj
	}
	return map[string]any{}
}

// CoerceString renders identifiers and labels coming from loosely typed rows.
func CoerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case *string:
		if val == nil {
			return ""
		}
		return strings.TrimSpace(*val)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	}
	if f := CoerceFloat(v); f != nil {
		return strconv.FormatFloat(*f, 'f', -1, 64)
	}
	return ""
}
