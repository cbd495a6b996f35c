package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatHuman OutputFormat = "human"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

var outputFormats = []OutputFormat{FormatHuman, FormatJSON, FormatYAML}

func parseFormat(s string) (OutputFormat, error) {
	f := OutputFormat(s)
	if !slices.Contains(outputFormats, f) {
		return "", fmt.Errorf("unsupported format %q (want human, json or yaml)", s)
	}
	return f, nil
}

// writeStructured encodes v as JSON or YAML. Slices keep their order.
func writeStructured(w io.Writer, format OutputFormat, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported structured format: %s", format)
	}
}
