package mocks

import (
	"context"

	"github.com/rpggio/proofescrow/internal/domain/event"
	"github.com/rpggio/proofescrow/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// Store is a mock for project.Store.
type Store struct {
	mock.Mock
}

func (m *Store) AllocateNextID(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *Store) SaveProject(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *Store) LoadProject(ctx context.Context, id uint64) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) SetOracle(ctx context.Context, oracle project.Address) error {
	args := m.Called(ctx, oracle)
	return args.Error(0)
}

func (m *Store) GetOracle(ctx context.Context) (project.Address, error) {
	args := m.Called(ctx)
	return args.Get(0).(project.Address), args.Error(1)
}

// Authorizer is a mock for project.Authorizer.
type Authorizer struct {
	mock.Mock
}

func (m *Authorizer) RequireAuth(ctx context.Context, addr project.Address) error {
	args := m.Called(ctx, addr)
	return args.Error(0)
}

// Payments is a mock for project.Payments.
type Payments struct {
	mock.Mock
}

func (m *Payments) Release(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

// EventRecorder is a mock for event.Recorder.
type EventRecorder struct {
	mock.Mock
}

func (m *EventRecorder) Record(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// EventRepository is a mock for event.Repository.
type EventRepository struct {
	mock.Mock
}

func (m *EventRepository) ListForProject(ctx context.Context, projectID uint64, opts event.ListOptions) ([]event.Event, error) {
	args := m.Called(ctx, projectID, opts)
	if list, ok := args.Get(0).([]event.Event); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
