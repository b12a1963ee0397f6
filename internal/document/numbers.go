package document

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/CaptShanks/nodeprism/internal/compare"
)

// maxExactFloat is the largest magnitude below which every integer has an
// exact float64 representation.
const maxExactFloat = 1 << 53

// canonicalize rewrites a decoded tree into the shape the compare package
// expects: mapping keys become strings and every number becomes a
// json.Number in canonical form, so 5, 5.0 and 5e0 are the same value and
// integers keep every digit.
func canonicalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = canonicalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			key, ok := compare.Stringify(canonicalize(k))
			if !ok {
				key = "null"
			}
			out[key] = canonicalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = canonicalize(item)
		}
		return out
	case json.Number:
		return canonicalNumber(val.String())
	case int:
		return json.Number(strconv.Itoa(val))
	case int64:
		return json.Number(strconv.FormatInt(val, 10))
	case uint64:
		return json.Number(strconv.FormatUint(val, 10))
	case float32:
		return canonicalFloat(float64(val))
	case float64:
		return canonicalFloat(val)
	default:
		return val
	}
}

// canonicalNumber normalizes the literal of a number. Plain integer
// literals are kept digit for digit; anything else goes through float64.
func canonicalNumber(s string) any {
	if isIntLiteral(s) {
		neg := strings.HasPrefix(s, "-")
		digits := strings.TrimLeft(strings.TrimPrefix(s, "-"), "0")
		if digits == "" {
			return json.Number("0")
		}
		if neg {
			digits = "-" + digits
		}
		return json.Number(digits)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return json.Number(s)
	}
	return canonicalFloat(f)
}

// canonicalFloat returns f as a json.Number, dropping the fraction of whole
// values. NaN and infinities have no JSON form and stay float64.
func canonicalFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	if f == math.Trunc(f) && math.Abs(f) < maxExactFloat {
		return json.Number(strconv.FormatInt(int64(f), 10))
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64))
}

func isIntLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
