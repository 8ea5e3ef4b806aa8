// Package capability models opaque, pre-authorised handles that perform one
// side-effecting action when sent. Handles are received from an event source
// and forwarded; they are never constructed from user data.
package capability

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrCancelled is returned by Send when the handle has been invalidated, for
// example because the application that issued it was removed.
var ErrCancelled = errors.New("capability cancelled")

// Payload carries structured text input attached to a send.
type Payload struct {
	// ResultKey names the input slot the text is delivered under.
	ResultKey string
	Text      string
}

// Handle is an opaque capability token.
type Handle interface {
	// Send performs the action. A nil payload sends the bare token.
	Send(ctx context.Context, payload *Payload) error
}

// Func adapts a function to the Handle interface.
type Func func(ctx context.Context, payload *Payload) error

// Send calls f.
func (f Func) Send(ctx context.Context, payload *Payload) error {
	return f(ctx, payload)
}

// Revocable wraps a handle so its issuer can invalidate it later. Sends after
// Revoke fail with ErrCancelled without reaching the inner handle.
type Revocable struct {
	id      string
	inner   Handle
	revoked atomic.Bool
}

// NewRevocable wraps inner with a fresh random identity.
func NewRevocable(inner Handle) *Revocable {
	return &Revocable{id: uuid.NewString(), inner: inner}
}

// ID identifies the handle in logs.
func (r *Revocable) ID() string { return r.id }

// Revoke invalidates the handle. It is safe to call more than once.
func (r *Revocable) Revoke() { r.revoked.Store(true) }

// Revoked reports whether Revoke has been called.
func (r *Revocable) Revoked() bool { return r.revoked.Load() }

// Send forwards to the wrapped handle unless revoked.
func (r *Revocable) Send(ctx context.Context, payload *Payload) error {
	if r.revoked.Load() {
		return ErrCancelled
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.inner.Send(ctx, payload)
}
