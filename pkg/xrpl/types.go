package xrpl

import (
	"encoding/json"
	"fmt"
)

// AccountID is a base58-check encoded XRPL account address ("r...").
type AccountID string

// Issue identifies an asset: the native asset (zero value) or a currency
// code issued by an account. Currency codes are either the three-letter
// ISO form or the 40-char hex form; XRP has no issuer.
type Issue struct {
	Currency string    `json:"currency"`
	Issuer   AccountID `json:"issuer,omitempty"`
}

// XRPIssue returns the native asset.
func XRPIssue() Issue {
	return Issue{}
}

// IsXRP reports whether the issue is the native asset.
func (i Issue) IsXRP() bool {
	return i.Issuer == "" && (i.Currency == "" || i.Currency == "XRP")
}

// Canonical collapses the spelled-out XRP forms onto the zero value so
// issues and books compare by value regardless of how a client wrote them.
func (i Issue) Canonical() Issue {
	if i.IsXRP() {
		return Issue{}
	}
	return i
}

// Label renders the issue the way the book-changes stream names sides:
// "XRP_drops" for the native asset, "<issuer>/<currency>" otherwise.
func (i Issue) Label() string {
	if i.IsXRP() {
		return "XRP_drops"
	}
	return fmt.Sprintf("%s/%s", i.Issuer, i.Currency)
}

// Book is a directional order book: offers selling Gets for Pays.
// The zero-valued Issue on either side is XRP. Books compare by value and
// are usable as map keys.
type Book struct {
	Gets Issue
	Pays Issue
}

func (b Book) String() string {
	return b.Gets.Label() + "|" + b.Pays.Label()
}

// LedgerRange is the contiguous range of validated ledgers on hand.
type LedgerRange struct {
	Min uint32
	Max uint32
}

func (r LedgerRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// LedgerHeader is the parsed header of one closed ledger.
type LedgerHeader struct {
	Sequence    uint32 `json:"sequence"`
	Hash        string `json:"hash"`
	ParentHash  string `json:"parent_hash,omitempty"`
	TxHash      string `json:"tx_hash,omitempty"`
	AccountHash string `json:"account_hash,omitempty"`
	TotalDrops  uint64 `json:"total_drops,omitempty"`

	// CloseTime is seconds since the ripple epoch.
	CloseTime           uint32 `json:"close_time"`
	CloseTimeResolution uint8  `json:"close_time_resolution,omitempty"`
}

// Fees is the fee schedule drawn from a ledger's FeeSettings entry, in drops.
type Fees struct {
	Base        uint64 `json:"base_fee"`
	ReserveBase uint64 `json:"reserve_base"`
	ReserveInc  uint64 `json:"reserve_inc"`
}

// TransactionAndMetadata pairs a transaction's signed fields with the
// metadata recorded when it was applied. Transaction holds the decoded JSON
// fields; Hash is the transaction hash in hex.
type TransactionAndMetadata struct {
	Transaction    map[string]json.RawMessage
	Meta           TxMeta
	Hash           string
	LedgerSequence uint32
}
