package tracker

import "strings"

// carrierAutoDetect tells the aggregator to identify the carrier itself.
const carrierAutoDetect = 0

// carrierIDs maps fulfillment platform carrier codes to the aggregator's
// numeric carrier identifiers.
var carrierIDs = map[string]int{
	"ups":         100002,
	"usps":        21051,
	"stamps_com":  21051,
	"fedex":       100003,
	"dhl":         7041,
	"dhl_express": 100001,
	"ontrac":      100049,
	"lasership":   100052,
	"canada_post": 3041,
	"royal_mail":  11031,
}

// CarrierID resolves a fulfillment carrier code to the aggregator's numeric
// identifier. Service-level codes such as "ups_ground" fall back to their
// base carrier; unknown codes resolve to auto-detect.
func CarrierID(carrierCode string) int {
	code := strings.ToLower(strings.TrimSpace(carrierCode))
	if code == "" {
		return carrierAutoDetect
	}
	if id, ok := carrierIDs[code]; ok {
		return id
	}
	if base, _, found := strings.Cut(code, "_"); found {
		if id, ok := carrierIDs[base]; ok {
			return id
		}
	}
	return carrierAutoDetect
}
