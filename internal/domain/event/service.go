package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrInvalidInput indicates invalid listing options.
var ErrInvalidInput = errors.New("invalid event query")

const maxLimit = 500

// Service handles event log reads.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new event service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListForProject returns a project's events oldest first.
func (s *Service) ListForProject(ctx context.Context, projectID uint64, opts ListOptions) ([]Event, error) {
	if opts.Limit < 0 || opts.Offset < 0 || opts.Limit > maxLimit {
		return nil, ErrInvalidInput
	}
	if opts.Limit == 0 {
		opts.Limit = 100
	}
	events, err := s.repo.ListForProject(ctx, projectID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}
