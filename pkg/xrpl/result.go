package xrpl

import "strings"

// engineResult is the numeric code and human message of one transaction
// engine result.
type engineResult struct {
	Code    int
	Message string
}

var engineResults = map[string]engineResult{
	"tesSUCCESS":             {0, "The transaction was applied. Only final in a validated ledger."},
	"tecCLAIM":               {100, "Fee claimed. Sequence used. No action."},
	"tecPATH_PARTIAL":        {101, "Path could not send full amount."},
	"tecUNFUNDED_PAYMENT":    {104, "Insufficient XRP balance to send."},
	"tecNO_DST":              {124, "Destination does not exist. Send XRP to create it."},
	"tecNO_DST_INSUF_XRP":    {125, "Destination does not exist. Too little XRP sent to create it."},
	"tecNO_LINE_INSUF_RESERVE": {126, "No such line. Too little reserve to create it."},
	"tecPATH_DRY":            {128, "Path could not send partial amount."},
	"tecUNFUNDED":            {129, "One of _ADD, _OFFER, or _SEND. Deprecated."},
	"tecINSUFFICIENT_RESERVE": {141, "Insufficient reserve to complete requested operation."},
	"tecKILLED":              {150, "An offer was killed."},
}

// classCodes maps a result-class prefix to its first code, used for results
// outside the table.
var classCodes = map[string]int{
	"tes": 0,
	"tec": 100,
	"ter": -99,
	"tef": -199,
	"tem": -299,
}

// EngineResult resolves a transaction result string to its numeric code and
// message. Unknown results fall back to their class code and an empty message.
func EngineResult(result string) (int, string) {
	if r, ok := engineResults[result]; ok {
		return r.Code, r.Message
	}
	if len(result) >= 3 {
		if code, ok := classCodes[strings.ToLower(result[:3])]; ok {
			return code, ""
		}
	}
	return 0, ""
}
