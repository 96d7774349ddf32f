// Package format decodes and encodes the structured text files grit reads
// and writes. JSON files are decoded as JSON, everything else as YAML.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions tried, in order, when a path is
// given without one.
var Extensions = []string{".json", ".yaml", ".yml"}

// IsJSON reports whether name should be decoded as JSON.
func IsJSON(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}

// Unmarshal decodes data into v. The name selects the syntax: JSON for
// .json files, YAML otherwise. JSON input is normalized through YAML so
// both syntaxes share the yaml struct tags and inline extension maps.
func Unmarshal(name string, data []byte, v any) error {
	if IsJSON(name) {
		var raw any
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}
		normalized, err := yaml.Marshal(fromJSON(raw))
		if err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}
		data = normalized
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// fromJSON converts json.Number values so YAML re-encodes them as plain
// integers or floats instead of strings.
func fromJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = fromJSON(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = fromJSON(e)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

// Marshal encodes v as YAML.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Find resolves a path that may omit its extension. A path that already
// names an existing file is returned unchanged.
func Find(path string) (string, error) {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, nil
	}
	for _, ext := range Extensions {
		if _, err := os.Stat(path + ext); err == nil {
			return path + ext, nil
		}
	}
	return "", fmt.Errorf("file not found: %s (tried %s)", path, strings.Join(Extensions, ", "))
}

// WriteFile encodes v as YAML and writes it to path.
func WriteFile(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // workspace files need to be readable
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
