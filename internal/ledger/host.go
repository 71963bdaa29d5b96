package ledger

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/proofescrow/internal/domain/event"
	"github.com/rpggio/proofescrow/internal/domain/project"
	"github.com/rpggio/proofescrow/internal/repository"
	"github.com/rpggio/proofescrow/internal/sqlite"
	"github.com/rpggio/proofescrow/internal/store"
)

// Host runs registry operations as atomic, authenticated ledger calls.
type Host struct {
	db     *sqlite.DB
	clock  project.Clock
	payout Payout
	admin  project.Address
	events *event.Service
	logger *slog.Logger
}

// Options configures a Host.
type Options struct {
	Payout Payout
	// Admin restricts oracle configuration to one identity when set.
	Admin  project.Address
	Logger *slog.Logger
}

// NewHost creates a new Host over a migrated database.
func NewHost(db *sqlite.DB, clock project.Clock, opts Options) *Host {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	payout := opts.Payout
	if payout == nil {
		payout = NewLogPayout(logger)
	}
	return &Host{
		db:     db,
		clock:  clock,
		payout: payout,
		admin:  opts.Admin,
		events: event.NewService(sqlite.NewEventRepository(db), logger),
		logger: logger,
	}
}

// Invoke runs fn as a single call made by caller. Every write fn makes, including
// events, commits together or not at all. Releases are paid out only after commit.
// An empty caller makes an anonymous call, which can still read and register.
func (h *Host) Invoke(ctx context.Context, op string, caller project.Address, fn func(ctx context.Context, r *project.Registry) error) error {
	callID := uuid.NewString()
	logger := h.logger.With("call_id", callID, "op", op, "caller", caller)
	ctx = WithCaller(ctx, caller)
	start := time.Now()

	var pending *pendingReleases
	err := h.db.WithTx(ctx, func(kv repository.KV, events event.Recorder) error {
		pending = &pendingReleases{callID: callID}
		registry := project.NewRegistry(store.New(kv), h.clock, ContextAuthorizer{}, project.Options{
			Payments: pending,
			Events:   &stampedRecorder{callID: callID, next: events},
			Admin:    h.admin,
			Logger:   logger,
		})
		return fn(ctx, registry)
	})
	duration := time.Since(start)

	if err != nil {
		if code := project.Code(err); code != "" {
			logger.Info("call rejected", "code", code, "error", err, "duration", duration)
		} else {
			logger.Error("call failed", "error", err, "duration", duration)
		}
		return err
	}

	// The call has committed; a payout failure cannot undo it.
	for _, rel := range pending.releases {
		if err := h.payout.Pay(ctx, rel); err != nil {
			logger.Error("payout failed", "project_id", rel.ProjectID, "amount", rel.Amount.String(), "error", err)
		}
	}

	logger.Debug("call committed", "duration", duration)
	return nil
}

// Events lists the committed events of a project.
func (h *Host) Events(ctx context.Context, projectID uint64, opts event.ListOptions) ([]event.Event, error) {
	return h.events.ListForProject(ctx, projectID, opts)
}

// stampedRecorder tags every event with the id of the call that emitted it.
type stampedRecorder struct {
	callID string
	next   event.Recorder
}

func (r *stampedRecorder) Record(ctx context.Context, e *event.Event) error {
	e.CallID = r.callID
	return r.next.Record(ctx, e)
}
