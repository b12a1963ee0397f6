package compare

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Normalize returns a shallow copy of node with the default identity fields
// converted to strings.
func Normalize(node Node) Node {
	return NormalizeFields(node, DefaultIdentityFields)
}

// NormalizeFields returns a shallow copy of node in which every non-nil
// value of the given fields is replaced by its string form, so that a
// document storing ids as numbers compares equal to one storing strings.
// Values that cannot be converted are left as they are.
func NormalizeFields(node Node, fields []string) Node {
	out := make(Node, len(node))
	for k, v := range node {
		out[k] = v
	}
	for _, f := range fields {
		v, ok := out[f]
		if !ok || v == nil {
			continue
		}
		if s, ok := Stringify(v); ok {
			out[f] = s
		}
	}
	return out
}

// Stringify converts a decoded document value to its display string.
// Whole numbers drop the fraction ("5" not "5.0"), composites are rendered
// as compact JSON. The boolean result is false when no conversion applies.
func Stringify(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		return formatFloat(val), true
	case float32:
		return formatFloat(float64(val)), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case json.Number:
		return val.String(), true
	case fmt.Stringer:
		return val.String(), true
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// truthy mirrors the check a nodeid must pass to be indexed: null, empty
// strings, zero, false and empty collections are all rejected.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// displayField returns the string form of a node field, or Unknown when the
// field is missing or null.
func displayField(node Node, field string) string {
	v, ok := node[field]
	if !ok || v == nil {
		return Unknown
	}
	s, ok := Stringify(v)
	if !ok {
		return Unknown
	}
	return s
}
