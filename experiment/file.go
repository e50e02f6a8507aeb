package experiment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a descriptor serialization format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the serialization format from a file extension: .yaml
// and .yml are YAML, anything else is JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode writes e to w in the given format.
func Encode(w io.Writer, e *Experiment, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil

	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Decode reads a descriptor from r. Unknown fields are rejected.
func Decode(r io.Reader, format Format) (*Experiment, error) {
	var e Experiment

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)

		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}

	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()

		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	return &e, nil
}

// Load reads a descriptor file, choosing the format by extension.
func Load(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experiment %s: %w", path, err)
	}

	e, err := Decode(bytes.NewReader(data), FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return e, nil
}

// Save writes e to path, choosing the format by extension.
func Save(path string, e *Experiment) error {
	var buf bytes.Buffer
	if err := Encode(&buf, e, FormatFor(path)); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write experiment %s: %w", path, err)
	}

	return nil
}

// Resolve returns the built-in experiment with the given name or, if no
// such built-in exists and ref names a file, the descriptor loaded from it.
func Resolve(ref string) (*Experiment, error) {
	if e, err := Builtin(ref); err == nil {
		return e, nil
	}

	if _, err := os.Stat(ref); err != nil {
		return nil, fmt.Errorf("%w %q (not a built-in or a readable file)",
			ErrUnknown, ref)
	}

	return Load(ref)
}
