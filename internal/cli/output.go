package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/roach88/crease/internal/client"
	"github.com/roach88/crease/internal/engine"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation rejected, scenario failed, replay mismatch
	ExitCommandError = 2 // Command error (bad flags, unreachable server, database not found)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostics and progress (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // scoring or transport code
	Message string `json:"message"`           // human-readable message
	Hint    string `json:"hint,omitempty"`    // what the operator can do
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a result. In text mode render draws it; a nil render
// prints data as is.
func (f *OutputFormatter) Success(data any, render func(w io.Writer)) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	if render != nil {
		render(f.Writer)
		return nil
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(e CLIError) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "error", Error: &e})
	}

	fmt.Fprintf(f.Writer, "%s [%s]: %s\n", color.RedString("Error"), e.Code, e.Message)
	if e.Hint != "" {
		fmt.Fprintf(f.Writer, "  %s\n", e.Hint)
	}
	if f.Verbose && e.Details != nil {
		fmt.Fprintf(f.Writer, "  Details: %v\n", e.Details)
	}
	return nil
}

// Fail reports a failed operation and returns the matching exit error.
// Rejections and validation failures exit 1; anything that kept the
// request from being judged at all exits 2.
func (f *OutputFormatter) Fail(action string, err error) error {
	e, code := describe(err)
	if writeErr := f.Error(e); writeErr != nil {
		return writeErr
	}
	return WrapExitError(code, action+" failed", err)
}

func describe(err error) (CLIError, int) {
	var ce *client.Error
	if errors.As(err, &ce) {
		e := CLIError{Code: ce.Code, Message: ce.Message, Hint: ce.Hint()}
		if e.Code == "" {
			e.Code = ce.Kind.String()
		}
		if e.Message == "" {
			e.Message = err.Error()
		}
		if len(ce.Fields) > 0 {
			e.Details = ce.Fields
		} else if len(ce.Details) > 0 {
			e.Details = ce.Details
		}
		switch ce.Kind {
		case client.KindValidation, client.KindRejected:
			return e, ExitFailure
		}
		return e, ExitCommandError
	}

	var se *engine.ScoringError
	if errors.As(err, &se) {
		e := CLIError{Code: string(se.Code), Message: se.Message}
		if se.Field != "" {
			e.Details = map[string]string{se.Field: se.Message}
		}
		return e, ExitFailure
	}
	return CLIError{Code: "ERROR", Message: err.Error()}, ExitCommandError
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
