// Package report renders comparison results as plain text, JSON or YAML and
// derives default output filenames.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/CaptShanks/nodeprism/internal/compare"
)

// Format selects the rendering of a result
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "txt":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("output format must be 'text', 'json' or 'yaml', got %q", s)
	}
}

// Ext returns the file extension used for a format
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "txt"
	}
}

// OutputFilename generates an output filename based on the input model
// filenames: compare_<name1>_vs_<name2>_results.<ext>
func OutputFilename(file1, file2 string, format Format) string {
	return fmt.Sprintf("compare_%s_vs_%s_results.%s", Stem(file1), Stem(file2), format.Ext())
}

// Stem returns the base name of path without its final extension
func Stem(path string) string {
	base := filepath.Base(path)
	if base == "-" || base == "." || base == string(filepath.Separator) {
		return "stdin"
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Options tune the text rendering
type Options struct {
	// Details appends the per-field differences of shared nodes
	Details bool
}

// Write renders res to w in the given format
func Write(w io.Writer, res *compare.Result, format Format, opts Options) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatYAML:
		return WriteYAML(w, res)
	default:
		return WriteText(w, res, opts)
	}
}

// WriteJSON writes res as indented JSON
func WriteJSON(w io.Writer, res *compare.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// WriteYAML writes res as YAML
func WriteYAML(w io.Writer, res *compare.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlResult(res)); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return enc.Close()
}

// yamlResult returns a copy of res whose field values encode as YAML
// numbers where the document held numbers.
func yamlResult(res *compare.Result) *compare.Result {
	out := *res
	out.DifferingFields = make(map[string]map[string]compare.FieldDiff, len(res.DifferingFields))
	for id, fields := range res.DifferingFields {
		converted := make(map[string]compare.FieldDiff, len(fields))
		for name, d := range fields {
			converted[name] = compare.FieldDiff{First: yamlValue(d.First), Second: yamlValue(d.Second)}
		}
		out.DifferingFields[id] = converted
	}
	return &out
}

// yamlValue swaps json.Number for a scalar node carrying its literal.
// yaml.v3 would otherwise quote it as a string.
func yamlValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		tag := "!!float"
		if _, err := val.Int64(); err == nil || isDigits(val.String()) {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: val.String()}
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = yamlValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = yamlValue(item)
		}
		return out
	default:
		return v
	}
}

func isDigits(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return s != "" && strings.Trim(s, "0123456789") == ""
}

// ReadJSON decodes a result previously written by WriteJSON
func ReadJSON(r io.Reader) (*compare.Result, error) {
	var res compare.Result
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	if res.DifferingFields == nil {
		res.DifferingFields = map[string]map[string]compare.FieldDiff{}
	}
	return &res, nil
}
