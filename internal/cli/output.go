package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/eacctl/internal/eac"
	"github.com/roach88/eacctl/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (app/activity not found, write refused, ...)
	ExitCommandError = 2 // Command error (bad flags, database not found, ...)
)

// Error codes reported in command output.
const (
	ErrCodeGeneric          = "E000"
	ErrCodeAppNotFound      = "E001"
	ErrCodeActivityNotFound = "E002"
	ErrCodeUnknownApp       = "E003"
	ErrCodeWriteFailed      = "E004"
	ErrCodeDatabaseNotFound = "E005"
	ErrCodeDatabaseCorrupt  = "E006"
	ErrCodeBackupExists     = "E007"
	ErrCodePresets          = "E008"
	ErrCodeJournal          = "E009"
)

// errorCode maps an operation error to its reported code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, eac.ErrAppNotFound):
		return ErrCodeAppNotFound
	case errors.Is(err, eac.ErrActivityNotFound):
		return ErrCodeActivityNotFound
	case errors.Is(err, eac.ErrUnknownApp):
		return ErrCodeUnknownApp
	case errors.Is(err, eac.ErrWrite):
		return ErrCodeWriteFailed
	case errors.Is(err, store.ErrDatabaseNotFound):
		return ErrCodeDatabaseNotFound
	case errors.Is(err, store.ErrChecksum), errors.Is(err, store.ErrBadFormat):
		return ErrCodeDatabaseCorrupt
	case errors.Is(err, store.ErrBackupExists):
		return ErrCodeBackupExists
	default:
		return ErrCodeGeneric
	}
}

// exitCodeFor classifies an operation error: problems with the store
// files themselves are command errors, everything else is an operation
// failure.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, store.ErrDatabaseNotFound),
		errors.Is(err, store.ErrChecksum),
		errors.Is(err, store.ErrBadFormat):
		return ExitCommandError
	default:
		return ExitFailure
	}
}

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
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

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors carrying no
// code come from cobra itself (unknown flags, missing required flags)
// and count as command errors.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// newFormatter builds the formatter for one command invocation, with
// verbose logs routed to stderr so JSON output stays clean.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// fail renders err in the configured format and converts it to an
// ExitError carrying the matching exit status.
func fail(f *OutputFormatter, err error) error {
	code := errorCode(err)
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(exitCodeFor(err), code, err)
}

// failUsage is fail with the exit status forced to ExitCommandError,
// for command-level problems that have no sentinel (unreadable preset
// files, journal setup).
func failUsage(f *OutputFormatter, code string, err error) error {
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}
