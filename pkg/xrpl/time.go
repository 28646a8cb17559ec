package xrpl

import "time"

// rippleEpoch is 2000-01-01T00:00:00 UTC; ledger close times count whole
// seconds from it.
var rippleEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// partialPaymentCutoff is the close time (in ripple seconds) after which
// metadata reliably records delivered amounts. Payments closed before it
// report "unavailable".
const partialPaymentCutoff uint32 = 446000000

// CloseTime converts ripple seconds to wall-clock time.
func CloseTime(rippleSeconds uint32) time.Time {
	return rippleEpoch.Add(time.Duration(rippleSeconds) * time.Second)
}

// CloseTimeISO renders a close time as ISO-8601 with whole seconds and a
// trailing Z.
func CloseTimeISO(rippleSeconds uint32) string {
	return CloseTime(rippleSeconds).UTC().Format("2006-01-02T15:04:05Z")
}
