package gateway

import (
	"context"
	"encoding/json"

	"github.com/xrplwatch/feedhub/pkg/feed"
	"github.com/xrplwatch/feedhub/pkg/xrpl"
)

// command is one client request frame on the socket.
type command struct {
	Command          string           `json:"command"`
	APIVersion       int              `json:"api_version,omitempty"`
	Streams          []string         `json:"streams,omitempty"`
	Accounts         []xrpl.AccountID `json:"accounts,omitempty"`
	AccountsProposed []xrpl.AccountID `json:"accounts_proposed,omitempty"`
	Books            []bookSpec       `json:"books,omitempty"`
}

// bookSpec names one order book in a subscribe request.
type bookSpec struct {
	TakerGets xrpl.Issue `json:"taker_gets"`
	TakerPays xrpl.Issue `json:"taker_pays"`
}

func (b bookSpec) book() xrpl.Book {
	return xrpl.Book{Gets: b.TakerGets.Canonical(), Pays: b.TakerPays.Canonical()}
}

// response is the reply frame to one command.
type response struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func okResponse(result json.RawMessage) response {
	return response{Status: "success", Result: result}
}

func errResponse(msg string) response {
	return response{Status: "error", Error: msg}
}

// handleCommand applies one subscribe/unsubscribe frame to the registry on
// behalf of a session.
func (s *Server) handleCommand(ctx context.Context, sess *wsSession, cmd command) response {
	if cmd.APIVersion != 0 {
		sess.apiVersion.Store(int64(cmd.APIVersion))
	}

	switch cmd.Command {
	case "subscribe":
		return s.subscribe(ctx, sess, cmd)
	case "unsubscribe":
		return s.unsubscribe(sess, cmd)
	default:
		return errResponse("unknown command")
	}
}

func (s *Server) subscribe(ctx context.Context, sess *wsSession, cmd command) response {
	var ledgerResult json.RawMessage
	for _, stream := range cmd.Streams {
		switch stream {
		case "ledger":
			result, err := s.registry.SubLedger(ctx, sess)
			if err != nil {
				return errResponse(err.Error())
			}
			ledgerResult = result
		case "transactions":
			s.registry.SubTransactions(sess)
		case "transactions_proposed":
			s.registry.SubProposedTransactions(sess)
		case "manifests":
			s.registry.SubManifest(sess)
		case "validations":
			s.registry.SubValidation(sess)
		case "book_changes":
			s.registry.SubBookChanges(sess)
		default:
			return errResponse("unknown stream: " + stream)
		}
	}
	for _, account := range cmd.Accounts {
		s.registry.SubAccount(account, sess)
	}
	for _, account := range cmd.AccountsProposed {
		s.registry.SubProposedAccount(account, sess)
	}
	for _, spec := range cmd.Books {
		s.registry.SubBook(spec.book(), sess)
	}
	return okResponse(ledgerResult)
}

func (s *Server) unsubscribe(sess *wsSession, cmd command) response {
	for _, stream := range cmd.Streams {
		switch stream {
		case "ledger":
			s.registry.UnsubLedger(sess)
		case "transactions":
			s.registry.UnsubTransactions(sess)
		case "transactions_proposed":
			s.registry.UnsubProposedTransactions(sess)
		case "manifests":
			s.registry.UnsubManifest(sess)
		case "validations":
			s.registry.UnsubValidation(sess)
		case "book_changes":
			s.registry.UnsubBookChanges(sess)
		default:
			return errResponse("unknown stream: " + stream)
		}
	}
	for _, account := range cmd.Accounts {
		s.registry.UnsubAccount(account, sess)
	}
	for _, account := range cmd.AccountsProposed {
		s.registry.UnsubProposedAccount(account, sess)
	}
	for _, spec := range cmd.Books {
		s.registry.UnsubBook(spec.book(), sess)
	}
	return okResponse(nil)
}

// ensure wsSession satisfies the engine's session surface
var _ feed.Session = (*wsSession)(nil)
