package xrpl

import (
	"encoding/json"
	"testing"
)

func TestAmountUnmarshalDrops(t *testing.T) {
	var a Amount
	if err := json.Unmarshal([]byte(`"1500"`), &a); err != nil {
		t.Fatalf("unmarshal drops: %v", err)
	}
	if !a.Issue.IsXRP() {
		t.Errorf("expected native issue, got %+v", a.Issue)
	}
	if a.Value.String() != "1500" {
		t.Errorf("value = %s, want 1500", a.Value)
	}
}

func TestAmountUnmarshalIOU(t *testing.T) {
	var a Amount
	raw := `{"currency":"USD","issuer":"rK9DrarGKnVEo2nYp5MfVRXRYf5yRX3mwD","value":"3.25"}`
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("unmarshal iou: %v", err)
	}
	if a.Issue.IsXRP() {
		t.Error("expected issued asset")
	}
	if a.Issue.Currency != "USD" || a.Issue.Issuer != "rK9DrarGKnVEo2nYp5MfVRXRYf5yRX3mwD" {
		t.Errorf("issue = %+v", a.Issue)
	}
	if a.Value.String() != "3.25" {
		t.Errorf("value = %s, want 3.25", a.Value)
	}
}

func TestAmountUnmarshalRejectsGarbage(t *testing.T) {
	var a Amount
	if err := json.Unmarshal([]byte(`"not-a-number"`), &a); err == nil {
		t.Error("expected error for non-numeric drops")
	}
	if err := json.Unmarshal([]byte(`42`), &a); err == nil {
		t.Error("expected error for bare number")
	}
}

func TestAmountMarshalRoundTrip(t *testing.T) {
	for _, raw := range []string{
		`"1500"`,
		`{"currency":"USD","issuer":"rK9DrarGKnVEo2nYp5MfVRXRYf5yRX3mwD","value":"3.25"}`,
	} {
		var a Amount
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		out, err := json.Marshal(a)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if mustCanonical(t, []byte(raw)) != mustCanonical(t, out) {
			t.Errorf("round trip %s -> %s", raw, out)
		}
	}
}

func mustCanonical(t *testing.T, raw []byte) string {
	t.Helper()
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	out, _ := json.Marshal(v)
	return string(out)
}

func TestIssueCanonical(t *testing.T) {
	spelled := Issue{Currency: "XRP"}
	if spelled.Canonical() != (Issue{}) {
		t.Error("spelled-out XRP should collapse to the zero issue")
	}
	iou := Issue{Currency: "USD", Issuer: "rK9DrarGKnVEo2nYp5MfVRXRYf5yRX3mwD"}
	if iou.Canonical() != iou {
		t.Error("issued assets must be unchanged")
	}
}

func TestIssueLabel(t *testing.T) {
	if got := XRPIssue().Label(); got != "XRP_drops" {
		t.Errorf("XRP label = %q", got)
	}
	issue := Issue{Currency: "USD", Issuer: "rK9DrarGKnVEo2nYp5MfVRXRYf5yRX3mwD"}
	if got := issue.Label(); got != "rK9DrarGKnVEo2nYp5MfVRXRYf5yRX3mwD/USD" {
		t.Errorf("IOU label = %q", got)
	}
}
