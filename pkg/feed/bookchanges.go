package feed

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/xrplwatch/feedhub/pkg/xrpl"
)

// BookChange is one aggregated order book entry of a book-changes message.
// Volumes are decimal strings; the OHLC fields hold per-fill prices, or the
// "-1" sentinel when the ledger had no fill on that book.
type BookChange struct {
	CurrencyA string `json:"currency_a"`
	CurrencyB string `json:"currency_b"`
	VolumeA   string `json:"volume_a"`
	VolumeB   string `json:"volume_b"`
	High      string `json:"high"`
	Low       string `json:"low"`
	Open      string `json:"open"`
	Close     string `json:"close"`
}

// bookTally accumulates one book's changes while scanning a ledger.
type bookTally struct {
	sideA xrpl.Issue
	sideB xrpl.Issue

	volumeA decimal.Decimal
	volumeB decimal.Decimal

	sampled bool
	high    decimal.Decimal
	low     decimal.Decimal
	open    decimal.Decimal
	close_  decimal.Decimal
}

// price renders a price, or the sentinel when no fill was sampled.
func (t *bookTally) price(v decimal.Decimal) string {
	if !t.sampled {
		return "-1"
	}
	return v.String()
}

// ComputeBookChanges aggregates the offer deltas of one ledger's
// transactions per canonical book direction. Failed transactions and
// non-offer nodes contribute nothing; a book whose both volumes net to zero
// is omitted.
func ComputeBookChanges(txns []*xrpl.TransactionAndMetadata) []BookChange {
	tallies := make(map[string]*bookTally)

	for _, tx := range txns {
		if tx.Meta.TransactionResult != "tesSUCCESS" {
			continue
		}
		for _, node := range tx.Meta.AffectedNodes {
			gets, pays, ok := node.OfferDelta()
			if !ok {
				continue
			}

			// Canonical side ordering: XRP first, otherwise the smaller
			// currency/issuer pair.
			noswap := true
			switch {
			case gets.Issue.IsXRP():
			case pays.Issue.IsXRP():
				noswap = false
			default:
				noswap = issueLess(gets.Issue, pays.Issue)
			}
			first, second := gets, pays
			if !noswap {
				first, second = pays, gets
			}
			if first.IsZero() && second.IsZero() {
				continue
			}

			key := first.Issue.Label() + "|" + second.Issue.Label()
			tally, ok := tallies[key]
			if !ok {
				tally = &bookTally{sideA: first.Issue, sideB: second.Issue}
				tallies[key] = tally
			}

			tally.volumeA = tally.volumeA.Add(first.Value.Abs())
			tally.volumeB = tally.volumeB.Add(second.Value.Abs())

			// Only an actual fill (both sides consumed) samples a price.
			if first.IsPositive() && second.IsPositive() {
				rate := first.Value.Div(second.Value)
				if !tally.sampled {
					tally.sampled = true
					tally.open = rate
					tally.high = rate
					tally.low = rate
				} else {
					if rate.GreaterThan(tally.high) {
						tally.high = rate
					}
					if rate.LessThan(tally.low) {
						tally.low = rate
					}
				}
				tally.close_ = rate
			}
		}
	}

	keys := make([]string, 0, len(tallies))
	for key, tally := range tallies {
		if tally.volumeA.IsZero() && tally.volumeB.IsZero() {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	changes := make([]BookChange, 0, len(keys))
	for _, key := range keys {
		tally := tallies[key]
		changes = append(changes, BookChange{
			CurrencyA: tally.sideA.Label(),
			CurrencyB: tally.sideB.Label(),
			VolumeA:   tally.volumeA.String(),
			VolumeB:   tally.volumeB.String(),
			High:      tally.price(tally.high),
			Low:       tally.price(tally.low),
			Open:      tally.price(tally.open),
			Close:     tally.price(tally.close_),
		})
	}
	return changes
}

// issueLess orders issues by currency then issuer.
func issueLess(a, b xrpl.Issue) bool {
	if a.Currency != b.Currency {
		return a.Currency < b.Currency
	}
	return a.Issuer < b.Issuer
}
