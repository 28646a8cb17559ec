package backend

import (
	"context"

	"github.com/xrplwatch/feedhub/pkg/xrpl"
)

// Backend is the read-only view of the ledger store the feed engine needs.
// Implementations may block; every method honors the caller's context.
type Backend interface {
	// Range returns the contiguous range of validated ledgers on hand.
	Range(ctx context.Context) (xrpl.LedgerRange, error)

	// FetchLedgerBySequence returns the header of one ledger.
	FetchLedgerBySequence(ctx context.Context, seq uint32) (*xrpl.LedgerHeader, error)

	// FetchLedgerObject returns the raw bytes of a ledger object as of the
	// given sequence, or errors.ErrNotFound when absent.
	FetchLedgerObject(ctx context.Context, key string, seq uint32) ([]byte, error)
}
