package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rpggio/proofescrow/internal/domain/event"
	"github.com/rpggio/proofescrow/internal/domain/project"
	"github.com/spf13/cobra"
)

// runOp opens the app, runs a registry operation as the resolved caller and prints its result.
func runOp(cmd *cobra.Command, opts *RootOptions, op string, fn func(ctx context.Context, a *app, r *project.Registry) (any, error)) error {
	a, err := openApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	var result any
	err = a.host.Invoke(cmd.Context(), op, a.caller(opts), func(ctx context.Context, r *project.Registry) error {
		var err error
		result, err = fn(ctx, a, r)
		return err
	})
	if err != nil {
		return reportError(out, err)
	}
	return out.Success(result)
}

func reportError(out *OutputFormatter, err error) error {
	code := project.Code(err)
	if code == "" {
		return WrapExitError(ExitCommandError, "operation failed", err)
	}
	if outErr := out.Error(code, err.Error()); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, code, err)
}

func parseID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid project id %q", arg), err)
	}
	return id, nil
}

// NewRegisterCommand creates the register subcommand.
func NewRegisterCommand(opts *RootOptions) *cobra.Command {
	var creator, goal, proofHash string
	var deadline uint64

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := project.ParseAmount(goal)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid goal", err)
			}
			h, err := project.ParseHash(proofHash)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid proof hash", err)
			}
			return runOp(cmd, opts, "register_project", func(ctx context.Context, a *app, r *project.Registry) (any, error) {
				c := project.Address(creator)
				if c == "" {
					c = a.caller(opts)
				}
				return r.RegisterProject(ctx, project.RegisterRequest{Creator: c, Goal: g, ProofHash: h, Deadline: deadline})
			})
		},
	}

	cmd.Flags().StringVar(&creator, "creator", "", "creator identity (defaults to --as)")
	cmd.Flags().StringVar(&goal, "goal", "", "funding goal")
	cmd.Flags().StringVar(&proofHash, "proof-hash", "", "proof commitment, 64 hex characters")
	cmd.Flags().Uint64Var(&deadline, "deadline", 0, "deadline in unix seconds")
	_ = cmd.MarkFlagRequired("goal")
	_ = cmd.MarkFlagRequired("proof-hash")
	_ = cmd.MarkFlagRequired("deadline")
	return cmd
}

// NewGetCommand creates the get subcommand.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <project-id>",
		Short: "Show a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runOp(cmd, opts, "get_project", func(ctx context.Context, _ *app, r *project.Registry) (any, error) {
				return r.GetProject(ctx, id)
			})
		},
	}
}

// NewSetOracleCommand creates the set-oracle subcommand.
func NewSetOracleCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-oracle <oracle>",
		Short: "Set the proof oracle (caller must be the admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oracle := project.Address(args[0])
			return runOp(cmd, opts, "set_oracle", func(ctx context.Context, a *app, r *project.Registry) (any, error) {
				if err := r.SetOracle(ctx, a.caller(opts), oracle); err != nil {
					return nil, err
				}
				return fmt.Sprintf("oracle set to %s", oracle), nil
			})
		},
	}
}

// NewVerifyCommand creates the verify subcommand.
func NewVerifyCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <project-id> <proof>",
		Short: "Submit a proof (caller must be the oracle)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			proof, err := project.ParseHash(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid proof", err)
			}
			return runOp(cmd, opts, "verify_and_release", func(ctx context.Context, _ *app, r *project.Registry) (any, error) {
				if err := r.VerifyAndRelease(ctx, id, proof); err != nil {
					return nil, err
				}
				return r.GetProject(ctx, id)
			})
		},
	}
}

// NewDepositCommand creates the deposit subcommand.
func NewDepositCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <project-id> <amount>",
		Short: "Deposit funds as the caller",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := project.ParseAmount(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid amount", err)
			}
			return runOp(cmd, opts, "deposit", func(ctx context.Context, a *app, r *project.Registry) (any, error) {
				return r.Deposit(ctx, project.DepositRequest{ProjectID: id, Donor: a.caller(opts), Amount: amount})
			})
		},
	}
}

// NewEventsCommand creates the events subcommand.
func NewEventsCommand(opts *RootOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "events <project-id>",
		Short: "List a project's committed events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := openApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			events, err := a.host.Events(cmd.Context(), id, event.ListOptions{Limit: limit, Offset: offset})
			if err != nil {
				if errors.Is(err, event.ErrInvalidInput) {
					return WrapExitError(ExitCommandError, "invalid paging", err)
				}
				return WrapExitError(ExitCommandError, "listing events", err)
			}
			return out.Success(events)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of events (default 100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of events to skip")
	return cmd
}
