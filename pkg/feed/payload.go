package feed

import (
	"encoding/json"
	"fmt"

	"github.com/xrplwatch/feedhub/pkg/xrpl"
)

// ledgerSubResponse is the synchronous reply to a ledger subscription: the
// ledger window and current fee schedule, without type or txn_count.
func ledgerSubResponse(header *xrpl.LedgerHeader, fees xrpl.Fees, rng xrpl.LedgerRange) map[string]any {
	return map[string]any{
		"validated_ledgers": rng.String(),
		"ledger_index":      header.Sequence,
		"ledger_hash":       header.Hash,
		"ledger_time":       header.CloseTime,
		"fee_base":          fees.Base,
		"reserve_base":      fees.ReserveBase,
		"reserve_inc":       fees.ReserveInc,
	}
}

// ledgerClosedPayload is the ledger stream message published per closed
// ledger.
func ledgerClosedPayload(header *xrpl.LedgerHeader, fees xrpl.Fees, validatedRange string, txnCount uint32) map[string]any {
	return map[string]any{
		"type":              "ledgerClosed",
		"ledger_index":      header.Sequence,
		"ledger_hash":       header.Hash,
		"ledger_time":       header.CloseTime,
		"fee_base":          fees.Base,
		"reserve_base":      fees.ReserveBase,
		"reserve_inc":       fees.ReserveInc,
		"validated_ledgers": validatedRange,
		"txn_count":         txnCount,
	}
}

// transactionPayload shapes the validated transaction message for one API
// version. Payments carry DeliverMax alongside Amount; version 2 drops the
// legacy Amount name.
func transactionPayload(tx *xrpl.TransactionAndMetadata, header *xrpl.LedgerHeader, apiVersion int) (json.RawMessage, error) {
	txJSON := make(map[string]json.RawMessage, len(tx.Transaction)+2)
	for k, v := range tx.Transaction {
		txJSON[k] = v
	}

	hash, err := json.Marshal(tx.Hash)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction hash: %w", err)
	}
	txJSON["hash"] = hash

	date, err := json.Marshal(header.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction date: %w", err)
	}
	txJSON["date"] = date

	if tx.Type() == "Payment" {
		if amount, ok := txJSON["Amount"]; ok {
			txJSON["DeliverMax"] = amount
			if apiVersion >= 2 {
				delete(txJSON, "Amount")
			}
		}
	}

	meta := map[string]any{
		"AffectedNodes":     tx.Meta.AffectedNodes,
		"TransactionIndex":  tx.Meta.TransactionIndex,
		"TransactionResult": tx.Meta.TransactionResult,
	}
	if delivered := tx.DeliveredAmount(header.CloseTime); delivered != nil {
		meta["delivered_amount"] = delivered
	}

	code, message := xrpl.EngineResult(tx.Meta.TransactionResult)

	return marshalPayload(map[string]any{
		"transaction":           txJSON,
		"meta":                  meta,
		"type":                  "transaction",
		"validated":             true,
		"status":                "closed",
		"ledger_index":          header.Sequence,
		"ledger_hash":           header.Hash,
		"engine_result_code":    code,
		"engine_result":         tx.Meta.TransactionResult,
		"engine_result_message": message,
		"close_time_iso":        xrpl.CloseTimeISO(header.CloseTime),
	})
}

// bookChangesPayload wraps the per-ledger aggregate for the book_changes
// stream. An empty ledger still publishes, with an empty changes array.
func bookChangesPayload(header *xrpl.LedgerHeader, changes []BookChange) (json.RawMessage, error) {
	if changes == nil {
		changes = []BookChange{}
	}
	return marshalPayload(map[string]any{
		"type":         "bookChanges",
		"ledger_index": header.Sequence,
		"ledger_hash":  header.Hash,
		"ledger_time":  header.CloseTime,
		"changes":      changes,
	})
}
