package event

import "context"

// Recorder appends events within the current ledger call.
type Recorder interface {
	Record(ctx context.Context, e *Event) error
}

// Repository reads committed events.
type Repository interface {
	ListForProject(ctx context.Context, projectID uint64, opts ListOptions) ([]Event, error)
}
