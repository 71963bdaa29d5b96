package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rpggio/proofescrow/internal/domain/event"
	"github.com/rpggio/proofescrow/internal/repository"
)

// Registry handles project registration, funding and proof verification.
type Registry struct {
	store    Store
	clock    Clock
	auth     Authorizer
	payments Payments
	events   event.Recorder
	admin    Address
	logger   *slog.Logger
}

// Options holds the optional collaborators of a Registry.
type Options struct {
	Payments Payments
	Events   event.Recorder
	// Admin, when set, is the only identity allowed to configure the oracle.
	Admin  Address
	Logger *slog.Logger
}

// NewRegistry creates a new registry over the given store.
func NewRegistry(store Store, clock Clock, auth Authorizer, opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		store:    store,
		clock:    clock,
		auth:     auth,
		payments: opts.Payments,
		events:   opts.Events,
		admin:    opts.Admin,
		logger:   logger,
	}
}

// RegisterRequest defines project registration inputs.
type RegisterRequest struct {
	Creator   Address
	Goal      Amount
	ProofHash Hash
	Deadline  uint64
}

// RegisterProject validates the request and persists a new project in the funding state.
func (r *Registry) RegisterProject(ctx context.Context, req RegisterRequest) (*Project, error) {
	if req.Goal.Sign() <= 0 {
		return nil, ErrInvalidGoal
	}
	now := r.clock.Now()
	if req.Deadline <= now {
		return nil, ErrInvalidDeadline
	}

	id, err := r.store.AllocateNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating project id: %w", err)
	}

	proj := &Project{
		ID:        id,
		Creator:   req.Creator,
		Goal:      req.Goal,
		Balance:   Amount{},
		ProofHash: req.ProofHash,
		Deadline:  req.Deadline,
		Status:    StatusFunding,
	}
	if err := r.store.SaveProject(ctx, proj); err != nil {
		return nil, fmt.Errorf("saving project: %w", err)
	}

	if err := r.emit(ctx, &id, event.TypeProjectRegistered, req.Creator, map[string]any{
		"goal":     req.Goal,
		"deadline": req.Deadline,
	}); err != nil {
		return nil, err
	}

	r.logger.Debug("project registered", "project_id", id, "creator", req.Creator, "goal", req.Goal.String())
	return proj, nil
}

// GetProject fetches a project by ID.
func (r *Registry) GetProject(ctx context.Context, id uint64) (*Project, error) {
	proj, err := r.store.LoadProject(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return proj, nil
}

// SetOracle replaces the verifier identity. The caller must authenticate as admin.
func (r *Registry) SetOracle(ctx context.Context, admin, oracle Address) error {
	if err := r.auth.RequireAuth(ctx, admin); err != nil {
		return err
	}
	if r.admin != "" && admin != r.admin {
		return ErrUnauthorized
	}
	if err := r.store.SetOracle(ctx, oracle); err != nil {
		return fmt.Errorf("saving oracle: %w", err)
	}
	if err := r.emit(ctx, nil, event.TypeOracleSet, admin, map[string]any{"oracle": oracle}); err != nil {
		return err
	}
	r.logger.Info("oracle configured", "admin", admin, "oracle", oracle)
	return nil
}

// VerifyAndRelease completes a funding project when the submitted proof matches its commitment.
// The transition is one-shot: a completed project never accepts another proof.
func (r *Registry) VerifyAndRelease(ctx context.Context, projectID uint64, proof Hash) error {
	proj, err := r.GetProject(ctx, projectID)
	if err != nil {
		return err
	}

	oracle, err := r.store.GetOracle(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotConfigured) {
			return ErrOracleNotSet
		}
		return fmt.Errorf("loading oracle: %w", err)
	}
	if err := r.auth.RequireAuth(ctx, oracle); err != nil {
		return err
	}

	if proj.IsCompleted() {
		return ErrAlreadyCompleted
	}
	if !proof.Equal(proj.ProofHash) {
		r.logger.Warn("proof rejected", "project_id", projectID)
		return ErrHashMismatch
	}

	proj.Status = StatusCompleted
	if err := r.store.SaveProject(ctx, proj); err != nil {
		return fmt.Errorf("saving project: %w", err)
	}

	if r.payments != nil {
		if err := r.payments.Release(ctx, proj); err != nil {
			return fmt.Errorf("releasing funds: %w", err)
		}
	}

	if err := r.emit(ctx, &projectID, event.TypeProjectCompleted, oracle, map[string]any{
		"released": proj.Balance,
		"creator":  proj.Creator,
	}); err != nil {
		return err
	}

	r.logger.Info("project completed", "project_id", projectID, "released", proj.Balance.String())
	return nil
}

// DepositRequest defines a funding contribution.
type DepositRequest struct {
	ProjectID uint64
	Donor     Address
	Amount    Amount
}

// Deposit credits a funding project's balance. The caller must authenticate as the donor.
func (r *Registry) Deposit(ctx context.Context, req DepositRequest) (*Project, error) {
	if err := r.auth.RequireAuth(ctx, req.Donor); err != nil {
		return nil, err
	}
	if req.Amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	proj, err := r.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if proj.IsCompleted() {
		return nil, ErrAlreadyCompleted
	}

	balance, ok := proj.Balance.Add(req.Amount)
	if !ok {
		return nil, ErrBalanceOverflow
	}
	proj.Balance = balance
	if err := r.store.SaveProject(ctx, proj); err != nil {
		return nil, fmt.Errorf("saving project: %w", err)
	}

	if err := r.emit(ctx, &req.ProjectID, event.TypeFundsDeposited, req.Donor, map[string]any{
		"amount":  req.Amount,
		"balance": balance,
	}); err != nil {
		return nil, err
	}

	r.logger.Debug("funds deposited", "project_id", req.ProjectID, "donor", req.Donor, "amount", req.Amount.String())
	return proj, nil
}

func (r *Registry) emit(ctx context.Context, projectID *uint64, typ event.Type, actor Address, details map[string]any) error {
	if r.events == nil {
		return nil
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", typ, err)
	}
	if err := r.events.Record(ctx, &event.Event{
		ProjectID:  projectID,
		Type:       typ,
		Actor:      actor.String(),
		Details:    string(raw),
		LedgerTime: r.clock.Now(),
	}); err != nil {
		return fmt.Errorf("recording %s event: %w", typ, err)
	}
	return nil
}
