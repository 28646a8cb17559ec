package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/xrplwatch/feedhub/pkg/httputil"
	"github.com/xrplwatch/feedhub/pkg/logging"
	"github.com/xrplwatch/feedhub/pkg/xrpl"
)

// maxIngestBytes bounds forwarded payload bodies.
const maxIngestBytes = 4 << 20

// LedgerWriter persists applied ledgers so SubLedger can answer from the
// same store the publications came from.
type LedgerWriter interface {
	SaveLedger(ctx context.Context, header *xrpl.LedgerHeader) error
	SaveLedgerObject(ctx context.Context, key string, seq uint32, data []byte) error
}

// ingestTx is one transaction of an ingested ledger.
type ingestTx struct {
	Transaction map[string]json.RawMessage `json:"transaction"`
	Meta        xrpl.TxMeta                `json:"meta"`
	Hash        string                     `json:"hash"`
}

// ingestLedgerRequest is the ledger applier's publication call: header,
// fee schedule, the validated range it computed, and the transactions in
// ledger order.
type ingestLedgerRequest struct {
	Header         xrpl.LedgerHeader `json:"header"`
	Fees           xrpl.Fees         `json:"fees"`
	ValidatedRange string            `json:"validated_range"`
	FeeObject      json.RawMessage   `json:"fee_object,omitempty"`
	Transactions   []ingestTx        `json:"transactions"`
}

// handleIngestLedger applies one closed ledger: persists the header, then
// publishes the ledger close, each transaction in index order, and the
// book-changes aggregate.
func (s *Server) handleIngestLedger(w http.ResponseWriter, r *http.Request) {
	var req ingestLedgerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "malformed ledger: "+err.Error())
		return
	}

	if s.writer != nil {
		if err := s.writer.SaveLedger(r.Context(), &req.Header); err != nil {
			s.logger.ComponentError(logging.ComponentBackend, "failed to persist ledger",
				zap.Uint32("sequence", req.Header.Sequence), zap.Error(err))
			httputil.WriteError(w, http.StatusInternalServerError, "failed to persist ledger")
			return
		}
		if len(req.FeeObject) > 0 {
			if err := s.writer.SaveLedgerObject(r.Context(), xrpl.FeeSettingsKey, req.Header.Sequence, req.FeeObject); err != nil {
				s.logger.ComponentWarn(logging.ComponentBackend, "failed to persist fee settings",
					zap.Uint32("sequence", req.Header.Sequence), zap.Error(err))
			}
		}
	}

	txns := make([]*xrpl.TransactionAndMetadata, 0, len(req.Transactions))
	for _, tx := range req.Transactions {
		txns = append(txns, &xrpl.TransactionAndMetadata{
			Transaction:    tx.Transaction,
			Meta:           tx.Meta,
			Hash:           tx.Hash,
			LedgerSequence: req.Header.Sequence,
		})
	}

	s.registry.PubLedger(&req.Header, req.Fees, req.ValidatedRange, uint32(len(txns)))
	for _, tx := range txns {
		s.registry.PubTransaction(tx, &req.Header)
	}
	s.registry.PubBookChanges(&req.Header, txns)

	s.logger.ComponentInfo(logging.ComponentLedger, "ledger applied",
		zap.Uint32("sequence", req.Header.Sequence), zap.Int("txn_count", len(txns)))
	httputil.WriteAccepted(w)
}

// handleIngestManifest forwards a relayed manifest verbatim.
func (s *Server) handleIngestManifest(w http.ResponseWriter, r *http.Request) {
	s.forwardBody(w, r, s.registry.ForwardManifest)
}

// handleIngestValidation forwards a relayed validation verbatim.
func (s *Server) handleIngestValidation(w http.ResponseWriter, r *http.Request) {
	s.forwardBody(w, r, s.registry.ForwardValidation)
}

// handleIngestProposed forwards a proposed transaction verbatim.
func (s *Server) handleIngestProposed(w http.ResponseWriter, r *http.Request) {
	s.forwardBody(w, r, s.registry.ForwardProposedTransaction)
}

// forwardBody relays a request body to one forwarding entry point without
// validating it; malformed payloads are the subscriber's problem.
func (s *Server) forwardBody(w http.ResponseWriter, r *http.Request, forward func(json.RawMessage)) {
	body, err := httputil.ReadBody(r, maxIngestBytes)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	forward(body)
	httputil.WriteAccepted(w)
}
