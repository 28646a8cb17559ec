package xrpl

import "encoding/json"

// Type returns the transaction's TransactionType field, or "" when absent.
func (t *TransactionAndMetadata) Type() string {
	raw, ok := t.Transaction["TransactionType"]
	if !ok {
		return ""
	}
	var typ string
	if err := json.Unmarshal(raw, &typ); err != nil {
		return ""
	}
	return typ
}

// Accounts returns the transaction's originator and destination-class
// accounts (Account, Destination) when present.
func (t *TransactionAndMetadata) Accounts() []AccountID {
	var out []AccountID
	for _, name := range []string{"Account", "Destination"} {
		if raw, ok := t.Transaction[name]; ok {
			var a AccountID
			if err := json.Unmarshal(raw, &a); err == nil && a != "" {
				out = append(out, a)
			}
		}
	}
	return out
}

// DeliveredAmount resolves the delivered_amount reported alongside the
// metadata. The recorded DeliveredAmount wins; otherwise payments closed
// after the partial-payments cutoff deliver their full Amount, and earlier
// ones report "unavailable". Non-payment transactions report nothing.
func (t *TransactionAndMetadata) DeliveredAmount(closeTime uint32) json.RawMessage {
	if len(t.Meta.DeliveredAmount) > 0 {
		return t.Meta.DeliveredAmount
	}
	if t.Type() != "Payment" {
		return nil
	}
	if closeTime > partialPaymentCutoff {
		if amount, ok := t.Transaction["Amount"]; ok {
			return amount
		}
	}
	return json.RawMessage(`"unavailable"`)
}
