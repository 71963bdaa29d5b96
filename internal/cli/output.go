package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rpggio/proofescrow/internal/domain/event"
	"github.com/rpggio/proofescrow/internal/domain/project"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation rejected by the registry
	ExitCommandError = 2 // Bad flags, unreadable config, database errors
)

// ExitError represents an error with a specific exit code.
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
	if err == nil {
		return ExitSuccess
	}
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

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprint(f.Writer, formatText(data))
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	_, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return err
}

func formatText(data any) string {
	var b strings.Builder
	switch v := data.(type) {
	case *project.Project:
		writeProject(&b, v)
	case []event.Event:
		if len(v) == 0 {
			b.WriteString("no events\n")
		}
		for _, e := range v {
			fmt.Fprintf(&b, "%d\t%s\t%s\tt=%d\t%s\n", e.ID, e.Type, e.Actor, e.LedgerTime, e.Details)
		}
	default:
		fmt.Fprintln(&b, v)
	}
	return b.String()
}

func writeProject(b *strings.Builder, p *project.Project) {
	fmt.Fprintf(b, "id:         %d\n", p.ID)
	fmt.Fprintf(b, "status:     %s\n", p.Status)
	fmt.Fprintf(b, "creator:    %s\n", p.Creator)
	fmt.Fprintf(b, "goal:       %s\n", p.Goal)
	fmt.Fprintf(b, "balance:    %s\n", p.Balance)
	fmt.Fprintf(b, "deadline:   %d\n", p.Deadline)
	fmt.Fprintf(b, "proof_hash: %s\n", p.ProofHash)
}
