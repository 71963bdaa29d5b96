package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/rpggio/proofescrow/internal/domain/project"
	"github.com/rpggio/proofescrow/internal/repository"
)

// ErrIDSpaceExhausted is returned when the project counter cannot advance.
var ErrIDSpaceExhausted = errors.New("project id space exhausted")

// Store implements project.Store over a key-value substrate.
// It holds no state of its own, so every read observes the substrate directly.
type Store struct {
	kv repository.KV
}

// New creates a new Store
func New(kv repository.KV) *Store {
	return &Store{kv: kv}
}

var _ project.Store = (*Store)(nil)

// AllocateNextID returns the current counter value and persists value+1.
// An absent counter reads as 0.
func (s *Store) AllocateNextID(ctx context.Context) (uint64, error) {
	key := ProjectCountKey().Bytes()
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to read project count: %w", err)
	}

	var current uint64
	if ok {
		if len(raw) != 8 {
			return 0, fmt.Errorf("corrupt project count: %d bytes", len(raw))
		}
		current = binary.BigEndian.Uint64(raw)
	}
	if current == math.MaxUint64 {
		return 0, ErrIDSpaceExhausted
	}

	var next [8]byte
	binary.BigEndian.PutUint64(next[:], current+1)
	if err := s.kv.Set(ctx, key, next[:]); err != nil {
		return 0, fmt.Errorf("failed to write project count: %w", err)
	}
	return current, nil
}

// SaveProject overwrites the entry for proj.ID
func (s *Store) SaveProject(ctx context.Context, proj *project.Project) error {
	data, err := json.Marshal(proj)
	if err != nil {
		return fmt.Errorf("failed to encode project %d: %w", proj.ID, err)
	}
	if err := s.kv.Set(ctx, ProjectKey(proj.ID).Bytes(), data); err != nil {
		return fmt.Errorf("failed to save project %d: %w", proj.ID, err)
	}
	return nil
}

// LoadProject retrieves a project by ID
func (s *Store) LoadProject(ctx context.Context, id uint64) (*project.Project, error) {
	raw, ok, err := s.kv.Get(ctx, ProjectKey(id).Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to load project %d: %w", id, err)
	}
	if !ok {
		return nil, repository.ErrNotFound
	}
	var proj project.Project
	if err := json.Unmarshal(raw, &proj); err != nil {
		return nil, fmt.Errorf("failed to decode project %d: %w", id, err)
	}
	return &proj, nil
}

// HasProject reports whether a project entry exists
func (s *Store) HasProject(ctx context.Context, id uint64) (bool, error) {
	ok, err := s.kv.Has(ctx, ProjectKey(id).Bytes())
	if err != nil {
		return false, fmt.Errorf("failed to check project %d: %w", id, err)
	}
	return ok, nil
}

// SetOracle overwrites the oracle identity
func (s *Store) SetOracle(ctx context.Context, oracle project.Address) error {
	if err := s.kv.Set(ctx, OracleKey().Bytes(), []byte(oracle)); err != nil {
		return fmt.Errorf("failed to save oracle: %w", err)
	}
	return nil
}

// GetOracle retrieves the oracle identity
func (s *Store) GetOracle(ctx context.Context) (project.Address, error) {
	raw, ok, err := s.kv.Get(ctx, OracleKey().Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to load oracle: %w", err)
	}
	if !ok {
		return "", repository.ErrNotConfigured
	}
	return project.Address(raw), nil
}
