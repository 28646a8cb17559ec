package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/xrplwatch/feedhub/pkg/errors"
	"github.com/xrplwatch/feedhub/pkg/logging"
	"github.com/xrplwatch/feedhub/pkg/xrpl"
)

const (
	testAccount1   = "rf1BiGeXwwQoi8Z2ueFYTEXSwuJYfV2Jpn"
	testAccount2   = "rLEsXccBGNR3UPuPu2hUXPjziKC3qKSBun"
	testCurrency   = "0158415500000000C1F76FF6ECB0BAC600000000"
	testIssuer     = "rK9DrarGKnVEo2nYp5MfVRXRYf5yRX3mwD"
	testLedgerHash = "4BC50C9B0D8515D3EAAE1E74B29A95804346C491EE1A95BF25E4AAB854A6A652"
	testTxHash     = "51D2AAA6B8E4E16EF22F6424854283D8391B56875858A711B8CE4D5B9A422CC2"
)

// mockSession records everything sent to it.
type mockSession struct {
	id   uint64
	api  int
	dead atomic.Bool

	mu   sync.Mutex
	sent [][]byte
}

var nextMockID atomic.Uint64

func newMockSession() *mockSession {
	return &mockSession{id: nextMockID.Add(1), api: 1}
}

func (m *mockSession) ID() uint64      { return m.id }
func (m *mockSession) APIVersion() int { return m.api }
func (m *mockSession) Closed() bool    { return m.dead.Load() }

func (m *mockSession) Send(payload []byte) {
	if m.dead.Load() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, payload)
}

func (m *mockSession) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *mockSession) sentAt(i int) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[i]
}

// kill simulates the underlying connection going away without unsubscribe.
func (m *mockSession) kill() { m.dead.Store(true) }

// mockBackend serves canned ledger state.
type mockBackend struct {
	rng     xrpl.LedgerRange
	rngErr  error
	headers map[uint32]*xrpl.LedgerHeader
	objects map[string][]byte
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		headers: make(map[uint32]*xrpl.LedgerHeader),
		objects: make(map[string][]byte),
	}
}

func (b *mockBackend) Range(context.Context) (xrpl.LedgerRange, error) {
	if b.rngErr != nil {
		return xrpl.LedgerRange{}, b.rngErr
	}
	return b.rng, nil
}

func (b *mockBackend) FetchLedgerBySequence(_ context.Context, seq uint32) (*xrpl.LedgerHeader, error) {
	h, ok := b.headers[seq]
	if !ok {
		return nil, fmt.Errorf("ledger %d: %w", seq, errors.ErrNotFound)
	}
	return h, nil
}

func (b *mockBackend) FetchLedgerObject(_ context.Context, key string, seq uint32) ([]byte, error) {
	data, ok := b.objects[fmt.Sprintf("%s@%d", key, seq)]
	if !ok {
		return nil, fmt.Errorf("object %s@%d: %w", key, seq, errors.ErrNotFound)
	}
	return data, nil
}

func newTestRegistry() *Registry {
	return NewRegistry(newMockBackend(), SyncExecutor{}, logging.Nop())
}

func testHeader(seq uint32) *xrpl.LedgerHeader {
	return &xrpl.LedgerHeader{Sequence: seq, Hash: testLedgerHash}
}

// paymentTx builds the canonical test payment with an offer modification in
// its metadata: final/previous TakerGets in drops, TakerPays in the test
// IOU issued by issuer.
func paymentTx(issuer xrpl.AccountID, finalGets, prevGets, finalPays, prevPays string) *xrpl.TransactionAndMetadata {
	tx := map[string]json.RawMessage{
		"Account":         json.RawMessage(`"` + testAccount1 + `"`),
		"Amount":          json.RawMessage(`"1"`),
		"Destination":     json.RawMessage(`"` + testAccount2 + `"`),
		"Fee":             json.RawMessage(`"1"`),
		"Sequence":        json.RawMessage(`32`),
		"SigningPubKey":   json.RawMessage(`"74657374"`),
		"TransactionType": json.RawMessage(`"Payment"`),
	}
	return &xrpl.TransactionAndMetadata{
		Transaction:    tx,
		Meta:           bookChangeMeta(issuer, finalGets, prevGets, finalPays, prevPays),
		Hash:           testTxHash,
		LedgerSequence: 32,
	}
}

func iou(issuer xrpl.AccountID, value string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"currency":"%s","issuer":"%s","value":"%s"}`, testCurrency, issuer, value))
}

func bookChangeMeta(issuer xrpl.AccountID, finalGets, prevGets, finalPays, prevPays string) xrpl.TxMeta {
	return xrpl.TxMeta{
		AffectedNodes: []xrpl.AffectedNode{{
			Modified: &xrpl.NodeDetails{
				LedgerEntryType: "Offer",
				FinalFields: map[string]json.RawMessage{
					"TakerGets": json.RawMessage(`"` + finalGets + `"`),
					"TakerPays": iou(issuer, finalPays),
				},
				PreviousFields: map[string]json.RawMessage{
					"TakerGets": json.RawMessage(`"` + prevGets + `"`),
					"TakerPays": iou(issuer, prevPays),
				},
			},
		}},
		TransactionIndex:  22,
		TransactionResult: "tesSUCCESS",
	}
}

func testBook(issuer xrpl.AccountID) xrpl.Book {
	return xrpl.Book{
		Gets: xrpl.XRPIssue(),
		Pays: xrpl.Issue{Currency: testCurrency, Issuer: issuer},
	}
}
