package repositories

import (
	"context"
	"errors"
	"time"
)

// TransactionManager runs a unit of work inside a single database transaction.
type TransactionManager interface {
	// RunInTx executes fn with a context carrying the transaction. Repositories called with that
	// context take part in it. The transaction commits when fn returns nil and rolls back otherwise.
	// Nested calls reuse the outer transaction.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ErrIdempotencyInFlight is returned when another request holding the same key has not finished.
var ErrIdempotencyInFlight = errors.New("a request with this idempotency key is still being processed")

// IdempotencyStore remembers the result of a request keyed by the client's Idempotency-Key.
type IdempotencyStore interface {
	// Reserve claims key. It returns reserved=true when the caller now owns the key, or the stored
	// result of an earlier completed request.
	Reserve(ctx context.Context, key string, ttl time.Duration) (result string, reserved bool, err error)
	// Complete records the result of a reserved key.
	Complete(ctx context.Context, key, result string, ttl time.Duration) error
	// Release forgets a reservation whose request failed.
	Release(ctx context.Context, key string) error
}
