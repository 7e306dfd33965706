package adapter

import "errors"

// Error taxonomy surfaced to callers. Operations wrap these sentinels so
// callers can classify failures with errors.Is while keeping the driver
// error in the chain.
var (
	// ErrNotOpen reports an operation attempted before the adapter was
	// opened or after it was closed.
	ErrNotOpen = errors.New("adapter is not open")

	// ErrStoreUnavailable reports a connection or network failure talking
	// to the database.
	ErrStoreUnavailable = errors.New("policy store unavailable")

	// ErrSaveFailed reports a failed write, constraint violation, or
	// transaction commit failure. After ErrSaveFailed from SavePolicy the
	// stored rule set is unchanged.
	ErrSaveFailed = errors.New("policy save failed")

	// ErrNotImplemented is reserved for backends that cannot support an
	// operation. The PostgreSQL adapter implements the full surface and
	// never returns it.
	ErrNotImplemented = errors.New("operation not implemented by this backend")
)
