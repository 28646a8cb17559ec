package xrpl

import (
	"encoding/json"
)

// TxMeta is the metadata recorded when a transaction was applied.
type TxMeta struct {
	AffectedNodes     []AffectedNode  `json:"AffectedNodes"`
	TransactionIndex  uint32          `json:"TransactionIndex"`
	TransactionResult string          `json:"TransactionResult"`
	DeliveredAmount   json.RawMessage `json:"DeliveredAmount,omitempty"`
}

// AffectedNode is one entry of the affected-nodes array. Exactly one of the
// three members is set.
type AffectedNode struct {
	Created  *NodeDetails `json:"CreatedNode,omitempty"`
	Modified *NodeDetails `json:"ModifiedNode,omitempty"`
	Deleted  *NodeDetails `json:"DeletedNode,omitempty"`
}

// NodeDetails describes one created, modified or deleted ledger entry.
// Field objects keep their raw JSON so payloads round-trip untouched.
type NodeDetails struct {
	LedgerEntryType   string                     `json:"LedgerEntryType"`
	LedgerIndex       string                     `json:"LedgerIndex,omitempty"`
	PreviousTxnID     string                     `json:"PreviousTxnID,omitempty"`
	PreviousTxnLgrSeq uint32                     `json:"PreviousTxnLgrSeq,omitempty"`
	NewFields         map[string]json.RawMessage `json:"NewFields,omitempty"`
	FinalFields       map[string]json.RawMessage `json:"FinalFields,omitempty"`
	PreviousFields    map[string]json.RawMessage `json:"PreviousFields,omitempty"`
}

// details returns whichever member is set.
func (n AffectedNode) details() *NodeDetails {
	switch {
	case n.Created != nil:
		return n.Created
	case n.Modified != nil:
		return n.Modified
	default:
		return n.Deleted
	}
}

// accountFields are the ledger-entry fields holding a bare account address.
var accountFields = []string{"Account", "Owner", "Destination", "RegularKey"}

// amountFields hold amounts whose issuer is a party to the entry.
var amountFields = []string{"Amount", "Balance", "TakerGets", "TakerPays", "HighLimit", "LowLimit"}

// AffectedAccounts collects every account named by the affected ledger
// entries. The transaction's own Account and Destination are the caller's
// to union in.
func (m *TxMeta) AffectedAccounts() map[AccountID]struct{} {
	accounts := make(map[AccountID]struct{})
	for _, node := range m.AffectedNodes {
		d := node.details()
		if d == nil {
			continue
		}
		for _, fields := range []map[string]json.RawMessage{d.NewFields, d.FinalFields, d.PreviousFields} {
			for _, name := range accountFields {
				if raw, ok := fields[name]; ok {
					var a AccountID
					if err := json.Unmarshal(raw, &a); err == nil && a != "" {
						accounts[a] = struct{}{}
					}
				}
			}
			for _, name := range amountFields {
				if raw, ok := fields[name]; ok {
					var amt Amount
					if err := json.Unmarshal(raw, &amt); err == nil && amt.Issue.Issuer != "" {
						accounts[amt.Issue.Issuer] = struct{}{}
					}
				}
			}
		}
	}
	return accounts
}

// AffectedBooks collects the order book of every offer entry touched by the
// transaction, keyed for value comparison.
func (m *TxMeta) AffectedBooks() map[Book]struct{} {
	books := make(map[Book]struct{})
	for _, node := range m.AffectedNodes {
		d := node.details()
		if d == nil || d.LedgerEntryType != "Offer" {
			continue
		}
		fields := d.FinalFields
		if fields == nil {
			fields = d.NewFields
		}
		gets, ok := amountField(fields, "TakerGets")
		if !ok {
			continue
		}
		pays, ok := amountField(fields, "TakerPays")
		if !ok {
			continue
		}
		books[Book{Gets: gets.Issue.Canonical(), Pays: pays.Issue.Canonical()}] = struct{}{}
	}
	return books
}

// OfferDelta extracts the consumed TakerGets/TakerPays of one offer node as
// previous minus final. Created offers record no fill; deleted offers count
// only when the deletion changed prior state (a plain cancel does not).
func (n AffectedNode) OfferDelta() (gets, pays Amount, ok bool) {
	d := n.details()
	if d == nil || n.Created != nil || d.LedgerEntryType != "Offer" {
		return Amount{}, Amount{}, false
	}
	prevGets, okPG := amountField(d.PreviousFields, "TakerGets")
	prevPays, okPP := amountField(d.PreviousFields, "TakerPays")
	finalGets, okFG := amountField(d.FinalFields, "TakerGets")
	finalPays, okFP := amountField(d.FinalFields, "TakerPays")
	if !okPG || !okPP || !okFG || !okFP {
		return Amount{}, Amount{}, false
	}
	return prevGets.Sub(finalGets), prevPays.Sub(finalPays), true
}

func amountField(fields map[string]json.RawMessage, name string) (Amount, bool) {
	raw, ok := fields[name]
	if !ok {
		return Amount{}, false
	}
	var amt Amount
	if err := json.Unmarshal(raw, &amt); err != nil {
		return Amount{}, false
	}
	return amt, true
}
