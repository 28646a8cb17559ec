package xrpl

import (
	"encoding/json"
	"testing"
)

func payment(amount string) *TransactionAndMetadata {
	return &TransactionAndMetadata{
		Transaction: map[string]json.RawMessage{
			"TransactionType": json.RawMessage(`"Payment"`),
			"Account":         json.RawMessage(`"rf1BiGeXwwQoi8Z2ueFYTEXSwuJYfV2Jpn"`),
			"Destination":     json.RawMessage(`"rLEsXccBGNR3UPuPu2hUXPjziKC3qKSBun"`),
			"Amount":          json.RawMessage(`"` + amount + `"`),
		},
	}
}

func TestTransactionType(t *testing.T) {
	if got := payment("1").Type(); got != "Payment" {
		t.Errorf("Type() = %q", got)
	}
	empty := &TransactionAndMetadata{Transaction: map[string]json.RawMessage{}}
	if got := empty.Type(); got != "" {
		t.Errorf("Type() on empty tx = %q", got)
	}
}

func TestTransactionAccounts(t *testing.T) {
	accounts := payment("1").Accounts()
	if len(accounts) != 2 {
		t.Fatalf("got %d accounts, want 2", len(accounts))
	}
	if accounts[0] != "rf1BiGeXwwQoi8Z2ueFYTEXSwuJYfV2Jpn" || accounts[1] != "rLEsXccBGNR3UPuPu2hUXPjziKC3qKSBun" {
		t.Errorf("accounts = %v", accounts)
	}
}

func TestDeliveredAmountFromMeta(t *testing.T) {
	tx := payment("1")
	tx.Meta.DeliveredAmount = json.RawMessage(`"42"`)
	if got := string(tx.DeliveredAmount(0)); got != `"42"` {
		t.Errorf("delivered = %s, want \"42\"", got)
	}
}

func TestDeliveredAmountBeforeCutoff(t *testing.T) {
	if got := string(payment("1").DeliveredAmount(0)); got != `"unavailable"` {
		t.Errorf("delivered = %s, want \"unavailable\"", got)
	}
}

func TestDeliveredAmountAfterCutoff(t *testing.T) {
	if got := string(payment("7").DeliveredAmount(partialPaymentCutoff + 1)); got != `"7"` {
		t.Errorf("delivered = %s, want \"7\"", got)
	}
}

func TestDeliveredAmountNonPayment(t *testing.T) {
	tx := &TransactionAndMetadata{
		Transaction: map[string]json.RawMessage{
			"TransactionType": json.RawMessage(`"OfferCreate"`),
		},
	}
	if got := tx.DeliveredAmount(0); got != nil {
		t.Errorf("delivered = %s, want none", got)
	}
}

func TestEngineResult(t *testing.T) {
	code, message := EngineResult("tesSUCCESS")
	if code != 0 {
		t.Errorf("tesSUCCESS code = %d", code)
	}
	if message != "The transaction was applied. Only final in a validated ledger." {
		t.Errorf("tesSUCCESS message = %q", message)
	}

	code, _ = EngineResult("tecPATH_DRY")
	if code != 128 {
		t.Errorf("tecPATH_DRY code = %d", code)
	}

	// unknown results fall back to their class
	code, message = EngineResult("tecBRAND_NEW")
	if code != 100 || message != "" {
		t.Errorf("unknown tec = (%d, %q)", code, message)
	}
	code, _ = EngineResult("temGARBAGE")
	if code != -299 {
		t.Errorf("unknown tem = %d", code)
	}
}

func TestParseFeeSettings(t *testing.T) {
	fees, err := ParseFeeSettings([]byte(`{"base_fee":1,"reserve_base":3,"reserve_inc":2}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fees.Base != 1 || fees.ReserveBase != 3 || fees.ReserveInc != 2 {
		t.Errorf("fees = %+v", fees)
	}

	// absent fields default to zero
	fees, err = ParseFeeSettings([]byte(`{"base_fee":5}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fees.Base != 5 || fees.ReserveBase != 0 || fees.ReserveInc != 0 {
		t.Errorf("fees = %+v", fees)
	}

	// nil input is the zero schedule
	fees, err = ParseFeeSettings(nil)
	if err != nil || fees != (Fees{}) {
		t.Errorf("nil input = %+v, %v", fees, err)
	}

	if _, err := ParseFeeSettings([]byte(`{{`)); err == nil {
		t.Error("expected error for malformed fee settings")
	}
}
