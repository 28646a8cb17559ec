package xrpl

import (
	"encoding/json"
	"fmt"
)

// FeeSettingsKey is the well-known index of the FeeSettings ledger entry.
const FeeSettingsKey = "4BC50C9B0D8515D3EAAE1E74B29A95804346C491EE1A95BF25E4AAB854A6A651"

// ParseFeeSettings decodes a FeeSettings ledger object. Absent fields are
// zero; nil input yields the zero schedule.
func ParseFeeSettings(data []byte) (Fees, error) {
	if len(data) == 0 {
		return Fees{}, nil
	}
	var fees Fees
	if err := json.Unmarshal(data, &fees); err != nil {
		return Fees{}, fmt.Errorf("malformed fee settings: %w", err)
	}
	return fees, nil
}
