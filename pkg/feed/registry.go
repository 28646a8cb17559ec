package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/xrplwatch/feedhub/pkg/backend"
	"github.com/xrplwatch/feedhub/pkg/errors"
	"github.com/xrplwatch/feedhub/pkg/logging"
	"github.com/xrplwatch/feedhub/pkg/xrpl"
)

// Registry is the subscription registry and publication engine. It owns one
// subscriber set per unkeyed stream and one keyed map per keyed stream, and
// fans ledger events out to the subscribed sessions.
//
// The registry holds sessions only through the Session interface and prunes
// closed ones lazily; sessions never reference the registry back.
type Registry struct {
	store    backend.Backend
	executor Executor
	logger   *logging.ColoredLogger

	ledger       *subscriberSet
	transactions *subscriberSet
	proposedTx   *subscriberSet
	manifests    *subscriberSet
	validations  *subscriberSet
	bookChanges  *subscriberSet

	accounts         *keyedSubscribers[xrpl.AccountID]
	proposedAccounts *keyedSubscribers[xrpl.AccountID]
	books            *keyedSubscribers[xrpl.Book]

	closed atomic.Bool
}

// NewRegistry builds a registry delivering through executor and reading
// ledger state from store.
func NewRegistry(store backend.Backend, executor Executor, logger *logging.ColoredLogger) *Registry {
	return &Registry{
		store:    store,
		executor: executor,
		logger:   logger,

		ledger:       newSubscriberSet(),
		transactions: newSubscriberSet(),
		proposedTx:   newSubscriberSet(),
		manifests:    newSubscriberSet(),
		validations:  newSubscriberSet(),
		bookChanges:  newSubscriberSet(),

		accounts:         newKeyedSubscribers[xrpl.AccountID](),
		proposedAccounts: newKeyedSubscribers[xrpl.AccountID](),
		books:            newKeyedSubscribers[xrpl.Book](),
	}
}

// SubLedger subscribes a session to the ledger stream and returns the
// current ledger window and fee schedule. The subscription is installed even
// when the store read fails, so later ledger publications still reach the
// session.
func (r *Registry) SubLedger(ctx context.Context, sess Session) (json.RawMessage, error) {
	if r.closed.Load() {
		return nil, errors.ErrShutdown
	}
	r.ledger.Add(sess)

	rng, err := r.store.Range(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger range: %w", err)
	}
	header, err := r.store.FetchLedgerBySequence(ctx, rng.Max)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ledger %d: %w", rng.Max, err)
	}

	var fees xrpl.Fees
	feeBlob, err := r.store.FetchLedgerObject(ctx, xrpl.FeeSettingsKey, rng.Max)
	switch {
	case err == nil:
		fees, err = xrpl.ParseFeeSettings(feeBlob)
		if err != nil {
			return nil, err
		}
	case errors.IsNotFound(err):
		// no fee entry on hand; the schedule defaults to zero
	default:
		return nil, fmt.Errorf("failed to fetch fee settings: %w", err)
	}

	return marshalPayload(ledgerSubResponse(header, fees, rng))
}

// UnsubLedger removes a session from the ledger stream.
func (r *Registry) UnsubLedger(sess Session) bool {
	return r.ledger.Remove(sess)
}

// SubTransactions subscribes a session to validated transactions.
func (r *Registry) SubTransactions(sess Session) bool {
	if r.closed.Load() {
		return false
	}
	return r.transactions.Add(sess)
}

// UnsubTransactions removes a session from validated transactions.
func (r *Registry) UnsubTransactions(sess Session) bool {
	return r.transactions.Remove(sess)
}

// SubProposedTransactions subscribes a session to the proposed stream.
func (r *Registry) SubProposedTransactions(sess Session) bool {
	if r.closed.Load() {
		return false
	}
	return r.proposedTx.Add(sess)
}

// UnsubProposedTransactions removes a session from the proposed stream.
func (r *Registry) UnsubProposedTransactions(sess Session) bool {
	return r.proposedTx.Remove(sess)
}

// SubManifest subscribes a session to relayed validator manifests.
func (r *Registry) SubManifest(sess Session) bool {
	if r.closed.Load() {
		return false
	}
	return r.manifests.Add(sess)
}

// UnsubManifest removes a session from the manifests stream.
func (r *Registry) UnsubManifest(sess Session) bool {
	return r.manifests.Remove(sess)
}

// SubValidation subscribes a session to relayed validations.
func (r *Registry) SubValidation(sess Session) bool {
	if r.closed.Load() {
		return false
	}
	return r.validations.Add(sess)
}

// UnsubValidation removes a session from the validations stream.
func (r *Registry) UnsubValidation(sess Session) bool {
	return r.validations.Remove(sess)
}

// SubBookChanges subscribes a session to aggregated book-change summaries.
func (r *Registry) SubBookChanges(sess Session) bool {
	if r.closed.Load() {
		return false
	}
	return r.bookChanges.Add(sess)
}

// UnsubBookChanges removes a session from the book-changes stream.
func (r *Registry) UnsubBookChanges(sess Session) bool {
	return r.bookChanges.Remove(sess)
}

// SubAccount subscribes a session to validated transactions affecting account.
func (r *Registry) SubAccount(account xrpl.AccountID, sess Session) bool {
	if r.closed.Load() {
		return false
	}
	return r.accounts.Sub(account, sess)
}

// UnsubAccount removes a per-account subscription.
func (r *Registry) UnsubAccount(account xrpl.AccountID, sess Session) bool {
	return r.accounts.Unsub(account, sess)
}

// SubProposedAccount subscribes a session to proposed transactions naming
// account.
func (r *Registry) SubProposedAccount(account xrpl.AccountID, sess Session) bool {
	if r.closed.Load() {
		return false
	}
	return r.proposedAccounts.Sub(account, sess)
}

// UnsubProposedAccount removes a proposed per-account subscription.
func (r *Registry) UnsubProposedAccount(account xrpl.AccountID, sess Session) bool {
	return r.proposedAccounts.Unsub(account, sess)
}

// SubBook subscribes a session to transactions touching one order book.
func (r *Registry) SubBook(book xrpl.Book, sess Session) bool {
	if r.closed.Load() {
		return false
	}
	return r.books.Sub(book, sess)
}

// UnsubBook removes a per-book subscription.
func (r *Registry) UnsubBook(book xrpl.Book, sess Session) bool {
	return r.books.Unsub(book, sess)
}

// Report returns the live subscriber count per stream. Keyed streams report
// the sum across keys.
func (r *Registry) Report() map[string]int {
	return map[string]int{
		"ledger":                r.ledger.LiveCount(),
		"transactions":          r.transactions.LiveCount(),
		"transactions_proposed": r.proposedTx.LiveCount(),
		"manifests":             r.manifests.LiveCount(),
		"validations":           r.validations.LiveCount(),
		"account":               r.accounts.LiveCount(),
		"accounts_proposed":     r.proposedAccounts.LiveCount(),
		"books":                 r.books.LiveCount(),
		"book_changes":          r.bookChanges.LiveCount(),
	}
}

// Close releases every subscription and refuses further operations. Pending
// executor tasks are left to the executor's own Stop.
func (r *Registry) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	r.ledger.Clear()
	r.transactions.Clear()
	r.proposedTx.Clear()
	r.manifests.Clear()
	r.validations.Clear()
	r.bookChanges.Clear()
	r.accounts.Clear()
	r.proposedAccounts.Clear()
	r.books.Clear()
	r.logger.ComponentInfo(logging.ComponentFeed, "subscription registry closed")
}

// submit hands one delivery to the executor, keyed by session so each
// session sees submission order.
func (r *Registry) submit(sess Session, payload []byte) {
	r.executor.Submit(sess.ID(), func() {
		sess.Send(payload)
	})
}

// marshalPayload renders a payload object to bytes.
func marshalPayload(obj map[string]any) (json.RawMessage, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return data, nil
}

func (r *Registry) warnShaping(what string, err error) {
	r.logger.ComponentWarn(logging.ComponentFeed, "dropping payload",
		zap.String("payload", what), zap.Error(err))
}
