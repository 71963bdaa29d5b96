package event

import "time"

// Type represents the kind of contract event
type Type string

const (
	TypeProjectRegistered Type = "project_registered"
	TypeOracleSet         Type = "oracle_set"
	TypeFundsDeposited    Type = "funds_deposited"
	TypeProjectCompleted  Type = "project_completed"
)

// Event is a record of a committed registry mutation
type Event struct {
	ID         int64     `json:"id"`
	CallID     string    `json:"call_id"`
	ProjectID  *uint64   `json:"project_id,omitempty"`
	Type       Type      `json:"type"`
	Actor      string    `json:"actor"`
	Details    string    `json:"details,omitempty"` // JSON string
	LedgerTime uint64    `json:"ledger_time"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListOptions provides paging for a project's events.
type ListOptions struct {
	Limit  int
	Offset int
}
