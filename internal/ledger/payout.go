package ledger

import (
	"context"
	"io"
	"log/slog"

	"github.com/rpggio/proofescrow/internal/domain/project"
)

// Release is a committed transfer of a completed project's balance to its creator.
type Release struct {
	CallID    string
	ProjectID uint64
	Creator   project.Address
	Amount    project.Amount
}

// Payout moves released funds. It is only invoked after the releasing call commits.
type Payout interface {
	Pay(ctx context.Context, rel Release) error
}

// LogPayout records releases in the log without moving any funds.
type LogPayout struct {
	logger *slog.Logger
}

// NewLogPayout creates a LogPayout
func NewLogPayout(logger *slog.Logger) *LogPayout {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LogPayout{logger: logger}
}

func (p *LogPayout) Pay(_ context.Context, rel Release) error {
	p.logger.Info("funds released",
		"call_id", rel.CallID,
		"project_id", rel.ProjectID,
		"creator", rel.Creator,
		"amount", rel.Amount.String(),
	)
	return nil
}

// pendingReleases buffers releases requested during a call until it commits.
type pendingReleases struct {
	callID   string
	releases []Release
}

func (p *pendingReleases) Release(_ context.Context, proj *project.Project) error {
	p.releases = append(p.releases, Release{
		CallID:    p.callID,
		ProjectID: proj.ID,
		Creator:   proj.Creator,
		Amount:    proj.Balance,
	})
	return nil
}
