package project

import "context"

// Store provides typed persistence for projects and the oracle identity.
type Store interface {
	AllocateNextID(ctx context.Context) (uint64, error)
	SaveProject(ctx context.Context, proj *Project) error
	LoadProject(ctx context.Context, id uint64) (*Project, error)
	SetOracle(ctx context.Context, oracle Address) error
	GetOracle(ctx context.Context) (Address, error)
}

// Clock supplies the current ledger time in seconds.
type Clock interface {
	Now() uint64
}

// Authorizer proves that the current caller is a given identity.
type Authorizer interface {
	RequireAuth(ctx context.Context, addr Address) error
}

// Payments releases escrowed funds once a project completes.
type Payments interface {
	Release(ctx context.Context, proj *Project) error
}
