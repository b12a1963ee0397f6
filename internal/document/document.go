// Package document loads model documents from JSON or YAML files into the
// generic tree the compare package works on.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/CaptShanks/nodeprism/internal/compare"
)

// Format identifies the serialization of a document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format of a file from its extension. Anything that is
// not .yaml or .yml is read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and decodes the document at path. A path of "-" reads JSON
// from os.Stdin.
func Load(path string) (compare.Document, error) {
	return LoadFrom(path, os.Stdin)
}

// LoadFrom is Load with the reader used for a path of "-"
func LoadFrom(path string, stdin io.Reader) (compare.Document, error) {
	if path == "-" {
		doc, err := Decode(stdin, FormatJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stdin: %w", err)
		}
		return doc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := Decode(bytes.NewReader(data), FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// Decode reads a single document from r
func Decode(r io.Reader, format Format) (compare.Document, error) {
	switch format {
	case FormatYAML:
		var doc any
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("empty document")
			}
			return nil, err
		}
		return canonicalize(doc), nil
	case FormatJSON:
		var doc any
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("empty document")
			}
			return nil, err
		}
		if dec.More() {
			return nil, fmt.Errorf("unexpected data after top-level value")
		}
		return canonicalize(doc), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
