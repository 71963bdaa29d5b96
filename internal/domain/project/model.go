package project

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// Status represents the lifecycle state of a project
type Status string

const (
	StatusFunding   Status = "funding"
	StatusCompleted Status = "completed"
)

// HashSize is the length of a proof commitment in bytes.
const HashSize = 32

// Hash is a fixed-size proof commitment.
type Hash [HashSize]byte

// ParseHash decodes 64 hex characters, with or without a 0x prefix.
func ParseHash(s string) (Hash, error) {
	var h Hash
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return h, fmt.Errorf("invalid hash: %w", err)
	}
	if len(raw) != HashSize {
		return h, fmt.Errorf("invalid hash: want %d bytes, got %d", HashSize, len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Equal compares two hashes in constant time.
func (h Hash) Equal(other Hash) bool {
	return subtle.ConstantTimeCompare(h[:], other[:]) == 1
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Address is an authenticated ledger identity.
type Address string

func (a Address) String() string {
	return string(a)
}

// Project is a funding campaign gated by a proof commitment
type Project struct {
	ID        uint64  `json:"id"`
	Creator   Address `json:"creator"`
	Goal      Amount  `json:"goal"`
	Balance   Amount  `json:"balance"`
	ProofHash Hash    `json:"proof_hash"`
	Deadline  uint64  `json:"deadline"`
	Status    Status  `json:"status"`
}

// IsCompleted reports whether the project reached its terminal state.
func (p *Project) IsCompleted() bool {
	return p.Status == StatusCompleted
}
