package formatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jacoelho/jpath/internal/stream"
)

var ErrUnsupportedOutput = errors.New("unsupported output")

// Output names a rendering of query results.
type Output string

const (
	// OutputJSON renders the matched values as a single JSON array.
	OutputJSON Output = "json"
	// OutputValues renders one compact JSON value per line.
	OutputValues Output = "values"
	// OutputPaths renders one normalized path per line.
	OutputPaths Output = "paths"
	// OutputYAML renders the matched values as a YAML sequence.
	OutputYAML Output = "yaml"
)

// Outputs lists the supported outputs.
var Outputs = []Output{OutputJSON, OutputValues, OutputPaths, OutputYAML}

// ParseOutput validates an output name.
func ParseOutput(name string) (Output, error) {
	for _, o := range Outputs {
		if string(o) == strings.ToLower(name) {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedOutput, name)
}

// Formatter defines the interface for rendering query results.
// Implementations are responsible for determining the output device.
type Formatter interface {
	Format(results ...stream.Result) error
}
