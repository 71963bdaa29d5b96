package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpggio/proofescrow/internal/domain/event"
	"github.com/rpggio/proofescrow/internal/domain/project"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type toolHandlers struct {
	ledger Ledger
}

func registerTools(server *sdkmcp.Server, ledger Ledger) {
	h := &toolHandlers{ledger: ledger}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "register_project",
		Description: "Register a project with a funding goal, a proof commitment and a deadline. Returns the project with its assigned id.",
	}, h.registerProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get the current record of a project",
	}, h.getProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_oracle",
		Description: "Set the identity allowed to submit proofs. The caller must be the admin.",
	}, h.setOracle)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "verify_and_release",
		Description: "Submit a proof for a funding project. The caller must be the oracle. On a match the project completes and its balance is released to the creator.",
	}, h.verifyAndRelease)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "deposit",
		Description: "Add funds to a project that is still funding. The caller must be the donor.",
	}, h.deposit)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_project_events",
		Description: "List the committed events of a project, oldest first",
	}, h.listProjectEvents)
}

func (h *toolHandlers) registerProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in RegisterProjectParams) (*sdkmcp.CallToolResult, any, error) {
	goal, err := project.ParseAmount(in.Goal)
	if err != nil {
		return errorResult(invalidInput("goal", err))
	}
	hash, err := project.ParseHash(in.ProofHash)
	if err != nil {
		return errorResult(invalidInput("proof_hash", err))
	}
	caller := getCaller(ctx)
	creator := in.Creator
	if creator == "" {
		creator = caller
	}

	var proj *project.Project
	err = h.ledger.Invoke(ctx, "register_project", project.Address(caller), func(ctx context.Context, r *project.Registry) error {
		proj, err = r.RegisterProject(ctx, project.RegisterRequest{
			Creator:   project.Address(creator),
			Goal:      goal,
			ProofHash: hash,
			Deadline:  in.Deadline,
		})
		return err
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(ProjectResult{Project: proj})
}

func (h *toolHandlers) getProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetProjectParams) (*sdkmcp.CallToolResult, any, error) {
	var proj *project.Project
	err := h.ledger.Invoke(ctx, "get_project", project.Address(getCaller(ctx)), func(ctx context.Context, r *project.Registry) error {
		var err error
		proj, err = r.GetProject(ctx, in.ID)
		return err
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(ProjectResult{Project: proj})
}

func (h *toolHandlers) setOracle(ctx context.Context, _ *sdkmcp.CallToolRequest, in SetOracleParams) (*sdkmcp.CallToolResult, any, error) {
	if in.Oracle == "" {
		return errorResult(invalidInput("oracle", fmt.Errorf("required")))
	}
	caller := getCaller(ctx)
	admin := in.Admin
	if admin == "" {
		admin = caller
	}

	err := h.ledger.Invoke(ctx, "set_oracle", project.Address(caller), func(ctx context.Context, r *project.Registry) error {
		return r.SetOracle(ctx, project.Address(admin), project.Address(in.Oracle))
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(SetOracleResult{Oracle: in.Oracle})
}

func (h *toolHandlers) verifyAndRelease(ctx context.Context, _ *sdkmcp.CallToolRequest, in VerifyAndReleaseParams) (*sdkmcp.CallToolResult, any, error) {
	proof, err := project.ParseHash(in.Proof)
	if err != nil {
		return errorResult(invalidInput("proof", err))
	}

	var result VerifyResult
	err = h.ledger.Invoke(ctx, "verify_and_release", project.Address(getCaller(ctx)), func(ctx context.Context, r *project.Registry) error {
		if err := r.VerifyAndRelease(ctx, in.ProjectID, proof); err != nil {
			return err
		}
		proj, err := r.GetProject(ctx, in.ProjectID)
		if err != nil {
			return err
		}
		result = VerifyResult{ProjectID: proj.ID, Status: proj.Status, Released: proj.Balance, Creator: proj.Creator}
		return nil
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(result)
}

func (h *toolHandlers) deposit(ctx context.Context, _ *sdkmcp.CallToolRequest, in DepositParams) (*sdkmcp.CallToolResult, any, error) {
	amount, err := project.ParseAmount(in.Amount)
	if err != nil {
		return errorResult(invalidInput("amount", err))
	}
	caller := getCaller(ctx)
	donor := in.Donor
	if donor == "" {
		donor = caller
	}

	var proj *project.Project
	err = h.ledger.Invoke(ctx, "deposit", project.Address(caller), func(ctx context.Context, r *project.Registry) error {
		proj, err = r.Deposit(ctx, project.DepositRequest{
			ProjectID: in.ProjectID,
			Donor:     project.Address(donor),
			Amount:    amount,
		})
		return err
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(ProjectResult{Project: proj})
}

func (h *toolHandlers) listProjectEvents(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListProjectEventsParams) (*sdkmcp.CallToolResult, any, error) {
	events, err := h.ledger.Events(ctx, in.ProjectID, event.ListOptions{Limit: in.Limit, Offset: in.Offset})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(EventsResult{Events: events})
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

// errorResult reports domain failures as tool errors with a stable "CODE: message" text.
// Anything unmapped is an internal failure.
func errorResult(err error) (*sdkmcp.CallToolResult, any, error) {
	apiErr := MapError(err)
	if apiErr == nil {
		apiErr = &APIError{Code: "Internal", Message: err.Error()}
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: apiErr.Error()}},
	}, nil, nil
}
