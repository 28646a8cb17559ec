package feed

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/xrplwatch/feedhub/pkg/logging"
	"github.com/xrplwatch/feedhub/pkg/xrpl"
)

// PubLedger publishes one ledgerClosed message to the ledger stream. The
// caller supplies the validated range string and transaction count it
// computed while applying the ledger.
func (r *Registry) PubLedger(header *xrpl.LedgerHeader, fees xrpl.Fees, validatedRange string, txnCount uint32) {
	if r.closed.Load() {
		return
	}
	payload, err := marshalPayload(ledgerClosedPayload(header, fees, validatedRange, txnCount))
	if err != nil {
		r.warnShaping("ledgerClosed", err)
		return
	}
	r.ledger.ForEachLive(func(sess Session) {
		r.submit(sess, payload)
	})
	r.logger.ComponentDebug(logging.ComponentFeed, "published ledger",
		zap.Uint32("sequence", header.Sequence), zap.Uint32("txn_count", txnCount))
}

// PubTransaction publishes one validated transaction to the transactions
// stream, the per-account streams of every affected account, and the
// per-book streams of every touched order book. A session subscribed to any
// combination of those receives exactly one copy.
func (r *Registry) PubTransaction(tx *xrpl.TransactionAndMetadata, header *xrpl.LedgerHeader) {
	if r.closed.Load() {
		return
	}

	// Payload variants are shaped once per API version actually present.
	variants := make(map[int]json.RawMessage)
	payloadFor := func(version int) json.RawMessage {
		if payload, ok := variants[version]; ok {
			return payload
		}
		payload, err := transactionPayload(tx, header, version)
		if err != nil {
			r.warnShaping("transaction", err)
			payload = nil
		}
		variants[version] = payload
		return payload
	}

	delivered := make(map[uint64]struct{})
	deliver := func(sess Session) {
		if _, seen := delivered[sess.ID()]; seen {
			return
		}
		delivered[sess.ID()] = struct{}{}
		if payload := payloadFor(sess.APIVersion()); payload != nil {
			r.submit(sess, payload)
		}
	}

	r.transactions.ForEachLive(deliver)

	affected := tx.Meta.AffectedAccounts()
	for _, account := range tx.Accounts() {
		affected[account] = struct{}{}
	}
	for account := range affected {
		r.accounts.ForEachLive(account, deliver)
	}

	for book := range tx.Meta.AffectedBooks() {
		r.books.ForEachLive(book, deliver)
	}
}

// PubBookChanges aggregates one ledger's transactions and publishes a single
// bookChanges message to the book_changes stream. Empty ledgers publish an
// empty changes array.
func (r *Registry) PubBookChanges(header *xrpl.LedgerHeader, txns []*xrpl.TransactionAndMetadata) {
	if r.closed.Load() {
		return
	}
	payload, err := bookChangesPayload(header, ComputeBookChanges(txns))
	if err != nil {
		r.warnShaping("bookChanges", err)
		return
	}
	r.bookChanges.ForEachLive(func(sess Session) {
		r.submit(sess, payload)
	})
}

// ForwardManifest forwards a relayed validator manifest verbatim.
func (r *Registry) ForwardManifest(obj json.RawMessage) {
	r.forward(r.manifests, obj)
}

// ForwardValidation forwards a relayed validation verbatim.
func (r *Registry) ForwardValidation(obj json.RawMessage) {
	r.forward(r.validations, obj)
}

// ForwardProposedTransaction forwards a proposed transaction verbatim to the
// proposed stream and to the proposed-account stream of every account named
// in its transaction object. The two fan-outs are independent; within the
// account fan-out a session is delivered to once even when it watches
// several of the named accounts.
func (r *Registry) ForwardProposedTransaction(obj json.RawMessage) {
	if r.closed.Load() {
		return
	}

	r.proposedTx.ForEachLive(func(sess Session) {
		r.submit(sess, obj)
	})

	delivered := make(map[uint64]struct{})
	for _, account := range proposedAccounts(obj) {
		r.proposedAccounts.ForEachLive(account, func(sess Session) {
			if _, seen := delivered[sess.ID()]; seen {
				return
			}
			delivered[sess.ID()] = struct{}{}
			r.submit(sess, obj)
		})
	}
}

func (r *Registry) forward(set *subscriberSet, obj json.RawMessage) {
	if r.closed.Load() {
		return
	}
	set.ForEachLive(func(sess Session) {
		r.submit(sess, obj)
	})
}

// proposedAccounts scans a forwarded proposed transaction for the accounts
// it names. Malformed payloads yield no accounts; the payload itself is
// still forwarded to the stream subscribers untouched.
func proposedAccounts(obj json.RawMessage) []xrpl.AccountID {
	var envelope struct {
		Transaction struct {
			Account     xrpl.AccountID `json:"Account"`
			Destination xrpl.AccountID `json:"Destination"`
		} `json:"transaction"`
	}
	if err := json.Unmarshal(obj, &envelope); err != nil {
		return nil
	}
	var out []xrpl.AccountID
	if envelope.Transaction.Account != "" {
		out = append(out, envelope.Transaction.Account)
	}
	if envelope.Transaction.Destination != "" && envelope.Transaction.Destination != envelope.Transaction.Account {
		out = append(out, envelope.Transaction.Destination)
	}
	return out
}
