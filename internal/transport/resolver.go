package transport

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// StaticResolver maps token digests to identities from configuration.
type StaticResolver struct {
	identities map[string]string
}

var _ IdentityResolver = (*StaticResolver)(nil)

// NewStaticResolver creates a resolver from sha256 hex digests of bearer tokens.
func NewStaticResolver(tokens map[string]string) *StaticResolver {
	identities := make(map[string]string, len(tokens))
	for hash, identity := range tokens {
		identities[strings.ToLower(hash)] = identity
	}
	return &StaticResolver{identities: identities}
}

func (r *StaticResolver) ResolveIdentity(_ context.Context, token string) (string, error) {
	identity, ok := r.identities[HashToken(token)]
	if !ok || identity == "" {
		return "", ErrUnauthorized
	}
	return identity, nil
}

// HashToken returns the sha256 hex digest stored in place of a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
