package ledger

import (
	"context"
	"fmt"

	"github.com/rpggio/proofescrow/internal/domain/project"
)

type callerKey struct{}

// WithCaller attaches the authenticated caller of a host call to ctx.
func WithCaller(ctx context.Context, caller project.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the authenticated caller, if any.
func CallerFromContext(ctx context.Context) (project.Address, bool) {
	caller, ok := ctx.Value(callerKey{}).(project.Address)
	return caller, ok && caller != ""
}

// ContextAuthorizer proves identities against the caller carried in the context.
type ContextAuthorizer struct{}

var _ project.Authorizer = ContextAuthorizer{}

func (ContextAuthorizer) RequireAuth(ctx context.Context, addr project.Address) error {
	caller, ok := CallerFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: no authenticated caller", project.ErrUnauthorized)
	}
	if caller != addr {
		return fmt.Errorf("%w: caller %s is not %s", project.ErrUnauthorized, caller, addr)
	}
	return nil
}
