package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/proofescrow/internal/domain/event"
	"github.com/rpggio/proofescrow/internal/domain/project"
)

// CodeInvalidInput tags arguments that could not be decoded.
const CodeInvalidInput = "InvalidInput"

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var recoveryHints = map[string]string{
	project.CodeInvalidGoal:      "Use a positive goal",
	project.CodeInvalidDeadline:  "Use a deadline later than the current ledger time",
	project.CodeNotFound:         "Check the project id",
	project.CodeNotConfigured:    "An admin must call set_oracle first",
	project.CodeAlreadyCompleted: "The project is final; no further proofs or deposits are accepted",
	project.CodeHashMismatch:     "Submit the preimage commitment registered with the project",
	project.CodeUnauthorized:     "Call as the identity the operation requires",
	project.CodeInvalidAmount:    "Use a positive amount",
	project.CodeBalanceOverflow:  "Deposit a smaller amount",
}

// MapError maps domain errors to stable MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	if code := project.Code(err); code != "" {
		return &APIError{Code: code, Message: err.Error(), RecoveryHint: recoveryHints[code]}
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, event.ErrInvalidInput) {
		return &APIError{Code: CodeInvalidInput, Message: err.Error(), RecoveryHint: "Use a limit between 0 and 500 and a non-negative offset"}
	}
	return nil
}

func invalidInput(field string, err error) *APIError {
	return &APIError{Code: CodeInvalidInput, Message: fmt.Sprintf("invalid %s: %v", field, err)}
}
