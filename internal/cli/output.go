package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/example/nextshop-catalog/client"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Server rejected the request
	ExitCommandError = 2 // Server unreachable or bad invocation
)

// Error codes reported in CLI output.
const (
	ErrCodeTimeout  = "E_TIMEOUT"
	ErrCodeNetwork  = "E_NETWORK"
	ErrCodeNotFound = "E_NOT_FOUND"
	ErrCodeAPI      = "E_API"
	ErrCodeGeneric  = "E_GENERIC"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
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

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the JSON envelope for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

// Success writes data as JSON, or calls text for human-readable output.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

// Fail reports err and returns the ExitError the command should return.
func (f *OutputFormatter) Fail(err error) error {
	code, status, exit := describe(err)

	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: err.Error(), Status: status},
		})
	} else {
		fmt.Fprintf(f.Writer, "Error [%s]: %v\n", code, err)
	}

	return &ExitError{Code: exit, Message: "request failed", Err: err}
}

func describe(err error) (code string, status int, exit int) {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrTimeout):
		return ErrCodeTimeout, 0, ExitCommandError
	case errors.Is(err, client.ErrNetwork):
		return ErrCodeNetwork, 0, ExitCommandError
	case errors.Is(err, client.ErrNotFound):
		return ErrCodeNotFound, 404, ExitFailure
	case errors.As(err, &apiErr):
		return ErrCodeAPI, apiErr.Status, ExitFailure
	default:
		return ErrCodeGeneric, 0, ExitFailure
	}
}
