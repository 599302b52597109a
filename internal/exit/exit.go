package exit

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/jpath/internal/jsonpath"
)

const (
	CodeSuccess = 0
	CodeFailure = 1
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the result message, if any, to the configured output.
func (r *Result) Print() {
	if r.Message == "" {
		return
	}
	fmt.Fprint(r.Output, r.Message)
}

// Success creates a result that writes to stdout with exit code 0.
func Success(message string) *Result {
	return &Result{
		Output:   os.Stdout,
		ExitCode: CodeSuccess,
		Message:  message,
	}
}

// Error creates a result that writes to stderr with exit code 1.
func Error(message string) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeFailure,
		Message:  message,
	}
}

// Errorf creates an error result with a formatted message.
func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// FromError maps err to a failure result. Query errors are rendered with
// the offending part of the query underlined.
func FromError(err error) *Result {
	if err == nil {
		return Success("")
	}

	var qerr *jsonpath.Error
	if errors.As(err, &qerr) {
		return Errorf("%s\n", qerr.Detail())
	}
	return Errorf("Error: %v\n", err)
}
