package project

import "errors"

var (
	// ErrInvalidGoal indicates a non-positive funding goal.
	ErrInvalidGoal = errors.New("goal must be positive")
	// ErrInvalidDeadline indicates a deadline at or before the current ledger time.
	ErrInvalidDeadline = errors.New("deadline must be in the future")
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrOracleNotSet indicates no oracle identity has been configured.
	ErrOracleNotSet = errors.New("oracle not set")
	// ErrAlreadyCompleted indicates the project already passed verification.
	ErrAlreadyCompleted = errors.New("project already completed")
	// ErrHashMismatch indicates the submitted proof doesn't match the commitment.
	ErrHashMismatch = errors.New("proof verification failed: hash mismatch")
	// ErrUnauthorized indicates the caller is not the identity the operation requires.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidAmount indicates a non-positive deposit.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrBalanceOverflow indicates a deposit would overflow the 128-bit balance.
	ErrBalanceOverflow = errors.New("balance overflow")
)

// Stable error tags.
const (
	CodeInvalidGoal      = "InvalidGoal"
	CodeInvalidDeadline  = "InvalidDeadline"
	CodeNotFound         = "NotFound"
	CodeNotConfigured    = "NotConfigured"
	CodeAlreadyCompleted = "AlreadyCompleted"
	CodeHashMismatch     = "HashMismatch"
	CodeUnauthorized     = "Unauthorized"
	CodeInvalidAmount    = "InvalidAmount"
	CodeBalanceOverflow  = "BalanceOverflow"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidGoal, CodeInvalidGoal},
	{ErrInvalidDeadline, CodeInvalidDeadline},
	{ErrProjectNotFound, CodeNotFound},
	{ErrOracleNotSet, CodeNotConfigured},
	{ErrAlreadyCompleted, CodeAlreadyCompleted},
	{ErrHashMismatch, CodeHashMismatch},
	{ErrUnauthorized, CodeUnauthorized},
	{ErrInvalidAmount, CodeInvalidAmount},
	{ErrBalanceOverflow, CodeBalanceOverflow},
}

// Code returns the stable tag for a registry error, or "" for anything else.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}
