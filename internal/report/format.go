package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/lasso/internal/orchestrator"
)

const unsupportedFormatErrorTemplateConstant = "%w: %q (supported: %s)"

// ErrUnsupportedFormat indicates an unknown output format name.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Format names an output rendering.
type Format string

// Supported output formats.
const (
	FormatTable Format = "table"
	FormatPlain Format = "plain"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
)

// SupportedFormats lists the accepted format names, default first.
func SupportedFormats() []string {
	return []string{string(FormatTable), string(FormatPlain), string(FormatJSON), string(FormatYAML), string(FormatCSV)}
}

// ParseFormat converts a user supplied value into a Format.
func ParseFormat(value string) (Format, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	for _, supported := range SupportedFormats() {
		if normalizedValue == supported {
			return Format(normalizedValue), nil
		}
	}
	return "", fmt.Errorf(unsupportedFormatErrorTemplateConstant, ErrUnsupportedFormat, value, strings.Join(SupportedFormats(), ", "))
}

// Kind tells renderers whether entries carry repository status or command output.
type Kind string

// Report kinds.
const (
	KindStatus  Kind = "status"
	KindCommand Kind = "command"
)

// PathDisplay converts an absolute path into its display form.
type PathDisplay func(path string) string

// Options configure a Renderer.
// ErrorOutput, when set, receives captured standard error in plain output instead of the report writer.
type Options struct {
	Kind        Kind
	DisplayPath PathDisplay
	Styled      bool
	ErrorOutput io.Writer
}

func (options Options) displayPath(path string) string {
	if options.DisplayPath == nil {
		return path
	}
	return options.DisplayPath(path)
}

// Renderer writes an aggregate report.
type Renderer interface {
	Render(writer io.Writer, aggregateReport orchestrator.AggregateReport) error
}

// NewRenderer returns the renderer for format.
func NewRenderer(format Format, options Options) (Renderer, error) {
	switch format {
	case FormatTable:
		return TableRenderer{options: options}, nil
	case FormatPlain:
		return PlainRenderer{options: options}, nil
	case FormatJSON:
		return JSONRenderer{}, nil
	case FormatYAML:
		return YAMLRenderer{}, nil
	case FormatCSV:
		return CSVRenderer{options: options}, nil
	default:
		return nil, fmt.Errorf(unsupportedFormatErrorTemplateConstant, ErrUnsupportedFormat, string(format), strings.Join(SupportedFormats(), ", "))
	}
}
