package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects how listings are written.
type Format string

const (
	// FormatJSON writes one compact JSON object per line.
	FormatJSON Format = "json"
	// FormatYAML writes a YAML document stream, one document per item.
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json" or "yaml", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q: must be json or yaml", s)
	}
}

// WriteItems writes each item in the given format. An empty list writes nothing.
func WriteItems[T any](w io.Writer, format Format, items []T) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, item := range items {
			if err := enc.Encode(item); err != nil {
				return fmt.Errorf("failed to encode output: %w", err)
			}
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, item := range items {
			if err := enc.Encode(item); err != nil {
				return fmt.Errorf("failed to encode output: %w", err)
			}
		}
		return nil
	}
}
