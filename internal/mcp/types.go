package mcp

import (
	"github.com/rpggio/proofescrow/internal/domain/event"
	"github.com/rpggio/proofescrow/internal/domain/project"
)

type RegisterProjectParams struct {
	Creator   string `json:"creator,omitempty" jsonschema:"creator identity, defaults to the caller"`
	Goal      string `json:"goal" jsonschema:"funding goal as a decimal integer string"`
	ProofHash string `json:"proof_hash" jsonschema:"32-byte proof commitment as 64 hex characters"`
	Deadline  uint64 `json:"deadline" jsonschema:"unix seconds, must be later than the current ledger time"`
}

type GetProjectParams struct {
	ID uint64 `json:"id" jsonschema:"project id"`
}

type SetOracleParams struct {
	Admin  string `json:"admin,omitempty" jsonschema:"admin identity, defaults to the caller"`
	Oracle string `json:"oracle" jsonschema:"identity allowed to submit proofs"`
}

type VerifyAndReleaseParams struct {
	ProjectID uint64 `json:"project_id" jsonschema:"project id"`
	Proof     string `json:"proof" jsonschema:"submitted proof as 64 hex characters"`
}

type DepositParams struct {
	ProjectID uint64 `json:"project_id" jsonschema:"project id"`
	Donor     string `json:"donor,omitempty" jsonschema:"donor identity, defaults to the caller"`
	Amount    string `json:"amount" jsonschema:"positive decimal integer string"`
}

type ListProjectEventsParams struct {
	ProjectID uint64 `json:"project_id" jsonschema:"project id"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of events, default 100, at most 500"`
	Offset    int    `json:"offset,omitempty" jsonschema:"number of events to skip"`
}

// ProjectResult wraps a project in tool output.
type ProjectResult struct {
	Project *project.Project `json:"project"`
}

// VerifyResult reports a completed verification.
type VerifyResult struct {
	ProjectID uint64          `json:"project_id"`
	Status    project.Status  `json:"status"`
	Released  project.Amount  `json:"released"`
	Creator   project.Address `json:"creator"`
}

type SetOracleResult struct {
	Oracle string `json:"oracle"`
}

type EventsResult struct {
	Events []event.Event `json:"events"`
}
