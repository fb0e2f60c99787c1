package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// OutputFormat selects how commands print their results.
type OutputFormat string

const (
	// OutputFormatText is the default human-readable format.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON prints indented JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML prints YAML.
	OutputFormatYAML OutputFormat = "yaml"
)

// outputFormats lists the accepted --output values in help order.
var outputFormats = []OutputFormat{OutputFormatText, OutputFormatJSON, OutputFormatYAML}

// OutputWriter prints command results in the selected format.
type OutputWriter struct {
	format OutputFormat
	w      io.Writer
}

// NewOutputWriter creates an OutputWriter that writes to w.
func NewOutputWriter(format OutputFormat, w io.Writer) *OutputWriter {
	return &OutputWriter{format: format, w: w}
}

// Write encodes data for the structured formats, or calls textFunc for text.
func (o *OutputWriter) Write(data any, textFunc func()) error {
	switch o.format {
	case OutputFormatJSON:
		enc := json.NewEncoder(o.w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case OutputFormatYAML:
		enc := yaml.NewEncoder(o.w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}
	textFunc()
	return nil
}

// IsText reports whether the output is meant for a human.
func (o *OutputWriter) IsText() bool {
	return o.format == OutputFormatText
}

// ParseOutputFormat parses an --output value. "yml" is accepted for YAML.
func ParseOutputFormat(s string) (OutputFormat, error) {
	if s == "" {
		return OutputFormatText, nil
	}
	if s == "yml" {
		return OutputFormatYAML, nil
	}
	for _, f := range outputFormats {
		if OutputFormat(s) == f {
			return f, nil
		}
	}

	names := make([]string, len(outputFormats))
	for i, f := range outputFormats {
		names[i] = "'" + string(f) + "'"
	}
	return "", fmt.Errorf("invalid output format %q: must be one of %s", s, strings.Join(names, ", "))
}

// completeOutputFormats completes the --output flag.
func completeOutputFormats(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, len(outputFormats))
	for i, f := range outputFormats {
		names[i] = string(f)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
