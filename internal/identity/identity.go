// Package identity verifies bearer credentials and resolves the acting principal.
package identity

import (
	"context"
	"errors"
)

var ErrInvalidToken = errors.New("invalid token")

// Principal is the verified identity behind a request.
type Principal struct {
	UID   string
	Email string
}

// Verifier checks a raw bearer credential. Implementations must not cache
// results; every call reaches the underlying identity service.
type Verifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}
